// Package photo manages photo records and the direct-to-storage upload flow.
package photo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Photo lifecycle states.
const (
	StatusPending = "PENDING"
	StatusReady   = "READY"
	StatusDeleted = "DELETED"
)

// Photo is a stored photo record. Binary bytes live only in object storage;
// the row is the authority on visibility.
type Photo struct {
	ID           string     `json:"id"`
	Key          string     `json:"key"`
	ContentType  string     `json:"contentType"`
	Size         int64      `json:"size"`
	OriginalName string     `json:"originalName"`
	Status       string     `json:"status"`
	CreatedBy    *string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// AlbumRef is a compact reference to an album a photo belongs to.
type AlbumRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// ErrNotFound is returned when a photo does not exist or is soft-deleted.
var ErrNotFound = errors.New("photo not found")

// ErrAlbumNotFound is returned when a referenced album is absent or soft-deleted.
var ErrAlbumNotFound = errors.New("album not found")

// CreateParams describes a new PENDING photo row.
type CreateParams struct {
	Key          string
	ContentType  string
	Size         int64
	OriginalName string
	CreatedBy    *string
	// AlbumID, when set, also appends a membership at the album's next position.
	AlbumID *string
}

// ListParams controls admin photo listing.
type ListParams struct {
	Limit          int
	Cursor         string
	IncludePending bool
}

// Repository handles all photo database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreatePending inserts a PENDING photo and, when an album is given, appends
// an album membership at max(position)+1 — both in one transaction.
func (r *Repository) CreatePending(ctx context.Context, p CreateParams) (*Photo, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if p.AlbumID != nil {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM albums WHERE id = $1 AND deleted_at IS NULL)`,
			*p.AlbumID,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check album: %w", err)
		}
		if !exists {
			return nil, ErrAlbumNotFound
		}
	}

	ph := &Photo{}
	err = tx.QueryRow(ctx,
		`INSERT INTO photos (key, content_type, size, original_name, status, created_by)
		 VALUES ($1, $2, $3, $4, 'PENDING', $5)
		 RETURNING id, key, content_type, size, original_name, status, created_by, created_at, updated_at`,
		p.Key, p.ContentType, p.Size, p.OriginalName, p.CreatedBy,
	).Scan(&ph.ID, &ph.Key, &ph.ContentType, &ph.Size, &ph.OriginalName, &ph.Status, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}

	if p.AlbumID != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO album_photos (album_id, photo_id, position)
			 SELECT $1, $2, COALESCE(MAX(position), -1) + 1
			 FROM album_photos WHERE album_id = $1`,
			*p.AlbumID, ph.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("append album membership: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return ph, nil
}

// GetByID fetches a non-deleted photo by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Photo, error) {
	ph := &Photo{}
	err := r.db.QueryRow(ctx,
		`SELECT id, key, content_type, size, original_name, status, created_by, created_at, updated_at, deleted_at
		 FROM photos WHERE id = $1 AND deleted_at IS NULL`,
		id,
	).Scan(&ph.ID, &ph.Key, &ph.ContentType, &ph.Size, &ph.OriginalName, &ph.Status, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt, &ph.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo by id: %w", err)
	}
	return ph, nil
}

// MarkReady transitions a photo to READY.
func (r *Repository) MarkReady(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE photos SET status = 'READY', updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark photo ready: %w", err)
	}
	return nil
}

// SoftDelete marks the photo DELETED and stamps deleted_at atomically.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE photos SET status = 'DELETED', deleted_at = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete photo: %w", err)
	}
	return nil
}

// List returns up to limit+1 non-deleted photos ordered newest first,
// starting after the cursor photo when one is given. The extra row lets the
// caller detect whether another page exists.
func (r *Repository) List(ctx context.Context, p ListParams) ([]Photo, error) {
	q := `SELECT id, key, content_type, size, original_name, status, created_by, created_at, updated_at, deleted_at
	      FROM photos
	      WHERE deleted_at IS NULL`
	args := []interface{}{}
	n := 1

	if !p.IncludePending {
		q += ` AND status = 'READY'`
	}
	if p.Cursor != "" {
		q += fmt.Sprintf(` AND (created_at, id) < (SELECT created_at, id FROM photos WHERE id = $%d)`, n)
		args = append(args, p.Cursor)
		n++
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, n)
	args = append(args, p.Limit+1)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		var ph Photo
		if err := rows.Scan(&ph.ID, &ph.Key, &ph.ContentType, &ph.Size, &ph.OriginalName, &ph.Status, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt, &ph.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

// AlbumRefs returns, for each photo id, the non-deleted albums it belongs to.
func (r *Repository) AlbumRefs(ctx context.Context, photoIDs []string) (map[string][]AlbumRef, error) {
	if len(photoIDs) == 0 {
		return map[string][]AlbumRef{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT ap.photo_id, a.id, a.title, a.slug
		 FROM album_photos ap
		 JOIN albums a ON a.id = ap.album_id AND a.deleted_at IS NULL
		 WHERE ap.photo_id = ANY($1)`,
		photoIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list album refs: %w", err)
	}
	defer rows.Close()

	refs := map[string][]AlbumRef{}
	for rows.Next() {
		var photoID string
		var ref AlbumRef
		if err := rows.Scan(&photoID, &ref.ID, &ref.Title, &ref.Slug); err != nil {
			return nil, fmt.Errorf("scan album ref: %w", err)
		}
		refs[photoID] = append(refs[photoID], ref)
	}
	return refs, rows.Err()
}
