// Package album manages album records, photo membership, ordering, and
// cover curation.
package album

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Album visibility levels.
const (
	VisibilityPublic   = "PUBLIC"
	VisibilityUnlisted = "UNLISTED"
	VisibilityPrivate  = "PRIVATE"
)

// Album is a stored album record.
type Album struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Visibility   string     `json:"visibility"`
	Order        int        `json:"order"`
	CoverPhotoID *string    `json:"coverPhotoId"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"-"`
}

// CoverCandidate is a photo considered for an album's display cover.
type CoverCandidate struct {
	Key     string
	Status  string
	Deleted bool
}

// listRow is an album plus the raw material for cover resolution.
type listRow struct {
	Album Album
	Cover *CoverCandidate // explicit cover photo, if set
	First *CoverCandidate // member at the lowest position, if any
	Count int
}

// memberRow is one photo membership in display order.
type memberRow struct {
	PhotoID      string
	Position     int
	Key          string
	OriginalName string
	CreatedAt    time.Time
}

// ErrNotFound is returned when an album does not exist or is soft-deleted.
var ErrNotFound = errors.New("album not found")

// ErrPhotoNotInAlbum is returned when an operation references a photo that
// is not a member of the album.
var ErrPhotoNotInAlbum = errors.New("photo not in album")

// CreateParams describes a new album row.
type CreateParams struct {
	Title       string
	Slug        string
	Description *string
	Visibility  string
	Order       int
	CreatedBy   *string
}

// UpdateParams carries the fields to change; nil fields are left untouched.
type UpdateParams struct {
	Title       *string
	Slug        *string
	Description *string
	Visibility  *string
	Order       *int
}

// Repository handles all album database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new album and returns the created record.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*Album, error) {
	a := &Album{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO albums (title, slug, description, visibility, display_order, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, slug, title, description, visibility, display_order, cover_photo_id, created_at, updated_at`,
		p.Title, p.Slug, p.Description, p.Visibility, p.Order, p.CreatedBy,
	).Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Visibility, &a.Order, &a.CoverPhotoID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return a, nil
}

// GetByID fetches a non-deleted album by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Album, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetBySlug fetches a non-deleted album by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Album, error) {
	return r.getWhere(ctx, "slug = $1", slug)
}

func (r *Repository) getWhere(ctx context.Context, cond string, arg interface{}) (*Album, error) {
	a := &Album{}
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, title, description, visibility, display_order, cover_photo_id, created_at, updated_at, deleted_at
		 FROM albums WHERE `+cond+` AND deleted_at IS NULL`,
		arg,
	).Scan(&a.ID, &a.Slug, &a.Title, &a.Description, &a.Visibility, &a.Order, &a.CoverPhotoID, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get album: %w", err)
	}
	return a, nil
}

// SlugTaken reports whether a live album other than excludeID already uses slug.
func (r *Repository) SlugTaken(ctx context.Context, slug string, excludeID *string) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM albums
		   WHERE slug = $1 AND deleted_at IS NULL AND ($2::uuid IS NULL OR id <> $2)
		 )`,
		slug, excludeID,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("probe slug: %w", err)
	}
	return taken, nil
}

// Update applies the non-nil fields of p to the album.
func (r *Repository) Update(ctx context.Context, id string, p UpdateParams) error {
	_, err := r.db.Exec(ctx,
		`UPDATE albums SET
		   title         = COALESCE($2, title),
		   slug          = COALESCE($3, slug),
		   description   = CASE WHEN $4::bool THEN $5 ELSE description END,
		   visibility    = COALESCE($6, visibility),
		   display_order = COALESCE($7, display_order),
		   updated_at    = NOW()
		 WHERE id = $1`,
		id, p.Title, p.Slug, p.Description != nil, descriptionValue(p.Description), p.Visibility, p.Order,
	)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	return nil
}

// descriptionValue maps a provided-but-empty description to NULL (clearing it).
func descriptionValue(d *string) *string {
	if d == nil || *d == "" {
		return nil
	}
	return d
}

// SoftDelete stamps deleted_at; memberships are left intact and become
// unreachable through listings because the album itself is filtered out.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE albums SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete album: %w", err)
	}
	return nil
}

// List returns non-deleted albums ordered by display order then recency,
// each with its photo count and cover-resolution candidates. publicOnly
// restricts the listing to PUBLIC albums.
func (r *Repository) List(ctx context.Context, publicOnly bool) ([]listRow, error) {
	q := `SELECT a.id, a.slug, a.title, a.description, a.visibility, a.display_order,
	             a.cover_photo_id, a.created_at, a.updated_at,
	             cp.key, cp.status, cp.deleted_at,
	             fp.key, fp.status, fp.deleted_at,
	             (SELECT COUNT(*) FROM album_photos ap WHERE ap.album_id = a.id)
	      FROM albums a
	      LEFT JOIN photos cp ON cp.id = a.cover_photo_id
	      LEFT JOIN LATERAL (
	        SELECT p.key, p.status, p.deleted_at
	        FROM album_photos ap
	        JOIN photos p ON p.id = ap.photo_id
	        WHERE ap.album_id = a.id
	        ORDER BY ap.position ASC
	        LIMIT 1
	      ) fp ON TRUE
	      WHERE a.deleted_at IS NULL`
	if publicOnly {
		q += ` AND a.visibility = 'PUBLIC'`
	}
	q += ` ORDER BY a.display_order ASC, a.created_at DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var out []listRow
	for rows.Next() {
		var row listRow
		var coverKey, coverStatus, firstKey, firstStatus *string
		var coverDeleted, firstDeleted *time.Time
		err := rows.Scan(
			&row.Album.ID, &row.Album.Slug, &row.Album.Title, &row.Album.Description,
			&row.Album.Visibility, &row.Album.Order, &row.Album.CoverPhotoID,
			&row.Album.CreatedAt, &row.Album.UpdatedAt,
			&coverKey, &coverStatus, &coverDeleted,
			&firstKey, &firstStatus, &firstDeleted,
			&row.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		row.Cover = candidate(coverKey, coverStatus, coverDeleted)
		row.First = candidate(firstKey, firstStatus, firstDeleted)
		out = append(out, row)
	}
	return out, rows.Err()
}

func candidate(key, status *string, deleted *time.Time) *CoverCandidate {
	if key == nil {
		return nil
	}
	c := &CoverCandidate{Key: *key, Deleted: deleted != nil}
	if status != nil {
		c.Status = *status
	}
	return c
}

// Photos returns the album's READY, non-deleted members in position order.
func (r *Repository) Photos(ctx context.Context, albumID string) ([]memberRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ap.photo_id, ap.position, p.key, p.original_name, p.created_at
		 FROM album_photos ap
		 JOIN photos p ON p.id = ap.photo_id
		 WHERE ap.album_id = $1 AND p.deleted_at IS NULL AND p.status = 'READY'
		 ORDER BY ap.position ASC`,
		albumID,
	)
	if err != nil {
		return nil, fmt.Errorf("list album photos: %w", err)
	}
	defer rows.Close()

	var out []memberRow
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(&m.PhotoID, &m.Position, &m.Key, &m.OriginalName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan album photo: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddPhotos appends the live (non-soft-deleted) photos among photoIDs to the
// album at increasing positions after the current maximum. Ids that do not
// reference a live photo are silently dropped; existing memberships are left
// untouched. Returns the number of live ids considered.
func (r *Repository) AddPhotos(ctx context.Context, albumID string, photoIDs []string) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx,
		`SELECT id FROM photos WHERE id = ANY($1) AND deleted_at IS NULL`,
		photoIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("filter live photos: %w", err)
	}
	var live []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan photo id: %w", err)
		}
		live = append(live, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(live) == 0 {
		return 0, tx.Commit(ctx)
	}

	var maxPos *int
	err = tx.QueryRow(ctx,
		`SELECT MAX(position) FROM album_photos WHERE album_id = $1`,
		albumID,
	).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	start := 0
	if maxPos != nil {
		start = *maxPos + 1
	}

	for i, photoID := range live {
		_, err := tx.Exec(ctx,
			`INSERT INTO album_photos (album_id, photo_id, position)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (album_id, photo_id) DO NOTHING`,
			albumID, photoID, start+i,
		)
		if err != nil {
			return 0, fmt.Errorf("add photo %q: %w", photoID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(live), nil
}

// RemovePhoto deletes the membership pair. Absence of the row is not an error.
func (r *Repository) RemovePhoto(ctx context.Context, albumID, photoID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM album_photos WHERE album_id = $1 AND photo_id = $2`,
		albumID, photoID,
	)
	if err != nil {
		return fmt.Errorf("remove album photo: %w", err)
	}
	return nil
}

// Reorder assigns each photo's position from its index in orderedPhotoIDs,
// as one all-or-nothing transaction. An id that is not a member of the album
// fails the whole call and nothing is applied. Concurrent reorders on the
// same album are not ordered relative to each other; the last commit wins.
func (r *Repository) Reorder(ctx context.Context, albumID string, orderedPhotoIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i, photoID := range orderedPhotoIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE album_photos SET position = $3 WHERE album_id = $1 AND photo_id = $2`,
			albumID, photoID, i,
		)
		if err != nil {
			return fmt.Errorf("set position of %q: %w", photoID, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrPhotoNotInAlbum
		}
	}

	return tx.Commit(ctx)
}

// IsMember reports whether the photo belongs to the album.
func (r *Repository) IsMember(ctx context.Context, albumID, photoID string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM album_photos WHERE album_id = $1 AND photo_id = $2)`,
		albumID, photoID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// SetCover points the album's cover at photoID, or clears it when nil.
func (r *Repository) SetCover(ctx context.Context, albumID string, photoID *string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE albums SET cover_photo_id = $2, updated_at = NOW() WHERE id = $1`,
		albumID, photoID,
	)
	if err != nil {
		return fmt.Errorf("set album cover: %w", err)
	}
	return nil
}
