package photo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lumen/gallery/internal/storage"
)

// Confirmation failures. Any of these leaves the photo PENDING so the caller
// may retry once the correct object is in place.
var (
	ErrAlreadyConfirmed    = errors.New("photo is not pending")
	ErrObjectMissing       = errors.New("stored object not found")
	ErrInvalidContentType  = errors.New("stored object content type not allowed")
	ErrContentTypeMismatch = errors.New("stored object content type differs from declared")
	ErrInvalidSize         = errors.New("stored object size out of bounds")
	ErrSizeMismatch        = errors.New("stored object size differs from declared")
)

// ValidationError carries field-level problems with an upload request.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Issues)
}

// Repo abstracts photo persistence for the service.
type Repo interface {
	CreatePending(ctx context.Context, p CreateParams) (*Photo, error)
	GetByID(ctx context.Context, id string) (*Photo, error)
	MarkReady(ctx context.Context, id string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, p ListParams) ([]Photo, error)
	AlbumRefs(ctx context.Context, photoIDs []string) (map[string][]AlbumRef, error)
}

// Service contains business logic for the upload choreography and listings.
type Service struct {
	repo      Repo
	store     storage.ObjectStorage
	keyPrefix string
}

// NewService creates a new photo Service.
func NewService(repo Repo, store storage.ObjectStorage, keyPrefix string) *Service {
	return &Service{repo: repo, store: store, keyPrefix: keyPrefix}
}

// UploadRequest is the declared shape of an upcoming direct upload.
type UploadRequest struct {
	FileName    string
	ContentType string
	Size        int64
	AlbumID     *string
}

// UploadTicket is everything the client needs to transfer the bytes directly
// to object storage and later confirm the upload.
type UploadTicket struct {
	PhotoID       string            `json:"photoId"`
	Key           string            `json:"key"`
	CdnURL        string            `json:"cdnUrl"`
	UploadURL     string            `json:"uploadUrl"`
	UploadHeaders map[string]string `json:"uploadHeaders"`
	ExpiresIn     int               `json:"expiresIn"`
}

// RequestUpload validates the declared file, records a PENDING photo (plus an
// album membership when requested), and issues a time-limited upload grant.
// No photo row is created when validation fails.
func (s *Service) RequestUpload(ctx context.Context, createdBy *string, req UploadRequest) (*UploadTicket, error) {
	var issues []string
	if req.FileName == "" || len(req.FileName) > 255 {
		issues = append(issues, "fileName must be 1-255 characters")
	}
	if !AllowedContentType(req.ContentType) {
		issues = append(issues, "contentType must be one of image/jpeg, image/png, image/webp")
	}
	if req.Size <= 0 || req.Size > MaxFileSizeBytes {
		issues = append(issues, fmt.Sprintf("size must be between 1 and %d bytes", MaxFileSizeBytes))
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	key := MakeKey(s.keyPrefix, req.ContentType)

	ph, err := s.repo.CreatePending(ctx, CreateParams{
		Key:          key,
		ContentType:  req.ContentType,
		Size:         req.Size,
		OriginalName: SanitizeFilename(req.FileName),
		CreatedBy:    createdBy,
		AlbumID:      req.AlbumID,
	})
	if err != nil {
		return nil, err
	}

	grant, err := s.store.PresignPut(ctx, ph.Key, ph.ContentType)
	if err != nil {
		return nil, fmt.Errorf("issue upload grant: %w", err)
	}

	return &UploadTicket{
		PhotoID:       ph.ID,
		Key:           ph.Key,
		CdnURL:        s.store.PublicURL(ph.Key),
		UploadURL:     grant.URL,
		UploadHeaders: grant.Headers,
		ExpiresIn:     grant.ExpiresIn,
	}, nil
}

// ConfirmResult reports a successful confirmation.
type ConfirmResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`
}

// ConfirmUpload re-verifies what actually landed in storage before trusting
// it. The upload happens client-to-storage, outside this server's sight, so
// the stored object must exist and match the declared content type and size
// exactly. Only then does the photo transition PENDING -> READY.
func (s *Service) ConfirmUpload(ctx context.Context, photoID string) (*ConfirmResult, error) {
	ph, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if ph.Status != StatusPending {
		return nil, ErrAlreadyConfirmed
	}

	info, err := s.store.Stat(ctx, ph.Key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrObjectMissing
	}
	if err != nil {
		return nil, fmt.Errorf("inspect object: %w", err)
	}

	if !AllowedContentType(info.ContentType) {
		return nil, ErrInvalidContentType
	}
	if info.Size <= 0 || info.Size > MaxFileSizeBytes {
		return nil, ErrInvalidSize
	}
	if info.ContentType != ph.ContentType {
		return nil, ErrContentTypeMismatch
	}
	if info.Size != ph.Size {
		return nil, ErrSizeMismatch
	}

	if err := s.repo.MarkReady(ctx, ph.ID); err != nil {
		return nil, err
	}

	return &ConfirmResult{
		ID:     ph.ID,
		Status: StatusReady,
		URL:    s.store.PublicURL(ph.Key),
	}, nil
}

// Delete soft-deletes the photo row, then removes the stored object
// best-effort. A storage failure is logged and ignored — the row already
// reflects the authoritative, user-visible state.
func (s *Service) Delete(ctx context.Context, photoID string) error {
	ph, err := s.repo.GetByID(ctx, photoID)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, ph.ID); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, ph.Key); err != nil {
		log.Printf("photo: best-effort storage delete failed for %q: %v", ph.Key, err)
	}
	return nil
}

// AdminItem is one row of the admin photo listing.
type AdminItem struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	URL          string     `json:"url"`
	OriginalName string     `json:"originalName"`
	ContentType  string     `json:"contentType"`
	Size         int64      `json:"size"`
	CreatedAt    time.Time  `json:"createdAt"`
	Albums       []AlbumRef `json:"albums"`
}

// AdminPage is a cursor page of admin listing items.
type AdminPage struct {
	Items      []AdminItem `json:"items"`
	NextCursor *string     `json:"nextCursor"`
}

// List returns a page of non-deleted photos for the admin UI, newest first,
// with the albums each photo belongs to.
func (s *Service) List(ctx context.Context, p ListParams) (*AdminPage, error) {
	p.Limit = clampLimit(p.Limit)

	rows, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, err
	}

	rows, nextCursor := pageOf(rows, p.Limit)

	ids := make([]string, len(rows))
	for i, ph := range rows {
		ids[i] = ph.ID
	}
	refs, err := s.repo.AlbumRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]AdminItem, len(rows))
	for i, ph := range rows {
		albums := refs[ph.ID]
		if albums == nil {
			albums = []AlbumRef{}
		}
		items[i] = AdminItem{
			ID:           ph.ID,
			Status:       ph.Status,
			URL:          s.store.PublicURL(ph.Key),
			OriginalName: ph.OriginalName,
			ContentType:  ph.ContentType,
			Size:         ph.Size,
			CreatedAt:    ph.CreatedAt,
			Albums:       albums,
		}
	}
	return &AdminPage{Items: items, NextCursor: nextCursor}, nil
}

// PublicItem is one row of the public photo listing.
type PublicItem struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicPage is a cursor page of public listing items.
type PublicPage struct {
	Items      []PublicItem `json:"items"`
	NextCursor *string      `json:"nextCursor"`
}

// ListPublic returns a page of READY, non-deleted photos for visitors.
func (s *Service) ListPublic(ctx context.Context, limit int, cursor string) (*PublicPage, error) {
	limit = clampLimit(limit)

	rows, err := s.repo.List(ctx, ListParams{Limit: limit, Cursor: cursor, IncludePending: false})
	if err != nil {
		return nil, err
	}

	rows, nextCursor := pageOf(rows, limit)

	items := make([]PublicItem, len(rows))
	for i, ph := range rows {
		items[i] = PublicItem{ID: ph.ID, URL: s.store.PublicURL(ph.Key), CreatedAt: ph.CreatedAt}
	}
	return &PublicPage{Items: items, NextCursor: nextCursor}, nil
}

// clampLimit applies the listing defaults and bounds (1..100, default 60).
func clampLimit(limit int) int {
	if limit <= 0 {
		return 60
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// pageOf trims the limit+1 probe row and derives the next cursor.
func pageOf(rows []Photo, limit int) ([]Photo, *string) {
	if len(rows) <= limit {
		return rows, nil
	}
	page := rows[:limit]
	last := page[len(page)-1].ID
	return page, &last
}
