package album

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumen/gallery/internal/storage"
)

// ValidationError carries field-level problems with an album request.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Issues)
}

// Repo abstracts album persistence for the service.
type Repo interface {
	Create(ctx context.Context, p CreateParams) (*Album, error)
	GetByID(ctx context.Context, id string) (*Album, error)
	GetBySlug(ctx context.Context, slug string) (*Album, error)
	SlugTaken(ctx context.Context, slug string, excludeID *string) (bool, error)
	Update(ctx context.Context, id string, p UpdateParams) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, publicOnly bool) ([]listRow, error)
	Photos(ctx context.Context, albumID string) ([]memberRow, error)
	AddPhotos(ctx context.Context, albumID string, photoIDs []string) (int, error)
	RemovePhoto(ctx context.Context, albumID, photoID string) error
	Reorder(ctx context.Context, albumID string, orderedPhotoIDs []string) error
	IsMember(ctx context.Context, albumID, photoID string) (bool, error)
	SetCover(ctx context.Context, albumID string, photoID *string) error
}

// Service contains business logic for album curation and ordering.
type Service struct {
	repo  Repo
	store storage.ObjectStorage
}

// NewService creates a new album Service.
func NewService(repo Repo, store storage.ObjectStorage) *Service {
	return &Service{repo: repo, store: store}
}

// CreateInput is the admin-supplied shape of a new album.
type CreateInput struct {
	Title       string
	Slug        *string
	Description *string
	Visibility  string
	Order       *int
}

// Created identifies a freshly created album.
type Created struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// Create validates the input, derives a unique slug (from the provided slug
// or the title), and inserts the album.
func (s *Service) Create(ctx context.Context, createdBy *string, in CreateInput) (*Created, error) {
	if in.Visibility == "" {
		in.Visibility = VisibilityPublic
	}
	if issues := validateAlbumFields(in.Title, true, in.Description, &in.Visibility, in.Order); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	base := in.Title
	if in.Slug != nil {
		if normalized := NormalizeSlug(*in.Slug); normalized != "" {
			base = normalized
		}
	}
	slug, err := ensureUniqueSlug(ctx, s.repo, base, nil)
	if err != nil {
		return nil, err
	}

	order := 0
	if in.Order != nil {
		order = *in.Order
	}

	a, err := s.repo.Create(ctx, CreateParams{
		Title:       in.Title,
		Slug:        slug,
		Description: trimDescription(in.Description),
		Visibility:  in.Visibility,
		Order:       order,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return nil, err
	}
	return &Created{ID: a.ID, Slug: a.Slug}, nil
}

// UpdateInput carries the fields to change; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Slug        *string
	Description *string
	Visibility  *string
	Order       *int
}

// Update applies a partial update. A provided slug is renormalized and
// reuniquified, excluding the album's own row from collision checks.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	title := existing.Title
	if in.Title != nil {
		title = *in.Title
	}
	if issues := validateAlbumFields(title, in.Title != nil, in.Description, in.Visibility, in.Order); len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	var slug *string
	if in.Slug != nil {
		base := NormalizeSlug(*in.Slug)
		if base == "" {
			base = existing.Title
		}
		unique, err := ensureUniqueSlug(ctx, s.repo, base, &id)
		if err != nil {
			return err
		}
		slug = &unique
	}

	return s.repo.Update(ctx, id, UpdateParams{
		Title:       in.Title,
		Slug:        slug,
		Description: in.Description,
		Visibility:  in.Visibility,
		Order:       in.Order,
	})
}

// Delete soft-deletes the album. Memberships are left intact.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

// ListItem is one album in a listing, with its resolved display cover.
type ListItem struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Visibility  string    `json:"visibility"`
	Order       int       `json:"order"`
	CoverURL    *string   `json:"coverUrl"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// List returns all live albums for the admin UI; with publicOnly it is the
// visitor variant restricted to PUBLIC albums.
func (s *Service) List(ctx context.Context, publicOnly bool) ([]ListItem, error) {
	rows, err := s.repo.List(ctx, publicOnly)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, len(rows))
	for i, row := range rows {
		var coverURL *string
		if key := ResolveCoverKey(row.Cover, row.First); key != nil {
			u := s.store.PublicURL(*key)
			coverURL = &u
		}
		items[i] = ListItem{
			ID:          row.Album.ID,
			Slug:        row.Album.Slug,
			Title:       row.Album.Title,
			Description: row.Album.Description,
			Visibility:  row.Album.Visibility,
			Order:       row.Album.Order,
			CoverURL:    coverURL,
			Count:       row.Count,
			CreatedAt:   row.Album.CreatedAt,
			UpdatedAt:   row.Album.UpdatedAt,
		}
	}
	return items, nil
}

// ResolveCoverKey picks an album's display cover: the explicit cover when it
// is READY and not deleted, else the member at position 0 when it qualifies,
// else nothing. The fallback deliberately does not advance past position 0.
func ResolveCoverKey(cover, first *CoverCandidate) *string {
	if cover != nil && cover.Status == "READY" && !cover.Deleted {
		return &cover.Key
	}
	if first != nil && first.Status == "READY" && !first.Deleted {
		return &first.Key
	}
	return nil
}

// PhotoItem is one album member in display order.
type PhotoItem struct {
	PhotoID      string    `json:"photoId"`
	Position     int       `json:"position"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Contents is an album together with its visible members.
type Contents struct {
	Album *Album      `json:"album"`
	Items []PhotoItem `json:"items"`
}

// Photos returns the album's READY members in position order.
func (s *Service) Photos(ctx context.Context, albumID string) (*Contents, error) {
	a, err := s.repo.GetByID(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return s.contents(ctx, a)
}

// GetBySlug is the public album view: PUBLIC albums are listed, UNLISTED
// ones are reachable by slug only, PRIVATE ones are invisible.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Contents, error) {
	a, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if a.Visibility == VisibilityPrivate {
		return nil, ErrNotFound
	}
	return s.contents(ctx, a)
}

func (s *Service) contents(ctx context.Context, a *Album) (*Contents, error) {
	members, err := s.repo.Photos(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	items := make([]PhotoItem, len(members))
	for i, m := range members {
		items[i] = PhotoItem{
			PhotoID:      m.PhotoID,
			Position:     m.Position,
			URL:          s.store.PublicURL(m.Key),
			OriginalName: m.OriginalName,
			CreatedAt:    m.CreatedAt,
		}
	}
	return &Contents{Album: a, Items: items}, nil
}

// AddPhotos appends the given photos to the album. Ids that do not reference
// a live photo are silently dropped; duplicate memberships are ignored.
// Returns the number of photos considered live.
func (s *Service) AddPhotos(ctx context.Context, albumID string, photoIDs []string) (int, error) {
	if _, err := s.repo.GetByID(ctx, albumID); err != nil {
		return 0, err
	}
	return s.repo.AddPhotos(ctx, albumID, photoIDs)
}

// RemovePhoto removes the membership; a missing membership is not an error.
func (s *Service) RemovePhoto(ctx context.Context, albumID, photoID string) error {
	return s.repo.RemovePhoto(ctx, albumID, photoID)
}

// Reorder applies the supplied complete ordering atomically.
func (s *Service) Reorder(ctx context.Context, albumID string, orderedPhotoIDs []string) error {
	if _, err := s.repo.GetByID(ctx, albumID); err != nil {
		return err
	}
	return s.repo.Reorder(ctx, albumID, orderedPhotoIDs)
}

// SetCover validates membership when photoID is non-nil and points the
// album's cover at it; nil clears the cover.
func (s *Service) SetCover(ctx context.Context, albumID string, photoID *string) error {
	if _, err := s.repo.GetByID(ctx, albumID); err != nil {
		return err
	}
	if photoID != nil {
		member, err := s.repo.IsMember(ctx, albumID, *photoID)
		if err != nil {
			return err
		}
		if !member {
			return ErrPhotoNotInAlbum
		}
	}
	return s.repo.SetCover(ctx, albumID, photoID)
}

func validateAlbumFields(title string, titleSet bool, description, visibility *string, order *int) []string {
	var issues []string
	if titleSet && (strings.TrimSpace(title) == "" || len(title) > 120) {
		issues = append(issues, "title must be 1-120 characters")
	}
	if description != nil && len(*description) > 2000 {
		issues = append(issues, "description must be at most 2000 characters")
	}
	if visibility != nil {
		switch *visibility {
		case VisibilityPublic, VisibilityUnlisted, VisibilityPrivate:
		default:
			issues = append(issues, "visibility must be PUBLIC, UNLISTED or PRIVATE")
		}
	}
	if order != nil && (*order < 0 || *order > 9999) {
		issues = append(issues, "order must be between 0 and 9999")
	}
	return issues
}

func trimDescription(d *string) *string {
	if d == nil {
		return nil
	}
	t := strings.TrimSpace(*d)
	if t == "" {
		return nil
	}
	return &t
}
