package photo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/lumen/gallery/internal/storage"
)

// fakeRepo is an in-memory photo.Repo.
type fakeRepo struct {
	photos map[string]*Photo
	albums map[string]bool // live album ids
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{photos: map[string]*Photo{}, albums: map[string]bool{}}
}

func (f *fakeRepo) CreatePending(_ context.Context, p CreateParams) (*Photo, error) {
	if p.AlbumID != nil && !f.albums[*p.AlbumID] {
		return nil, ErrAlbumNotFound
	}
	ph := &Photo{
		ID:           uuid.NewString(),
		Key:          p.Key,
		ContentType:  p.ContentType,
		Size:         p.Size,
		OriginalName: p.OriginalName,
		Status:       StatusPending,
	}
	f.photos[ph.ID] = ph
	return ph, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Photo, error) {
	ph, ok := f.photos[id]
	if !ok || ph.DeletedAt != nil {
		return nil, ErrNotFound
	}
	cp := *ph
	return &cp, nil
}

func (f *fakeRepo) MarkReady(_ context.Context, id string) error {
	f.photos[id].Status = StatusReady
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string) error {
	f.photos[id].Status = StatusDeleted
	now := f.photos[id].CreatedAt
	f.photos[id].DeletedAt = &now
	return nil
}

func (f *fakeRepo) List(_ context.Context, p ListParams) ([]Photo, error) {
	var out []Photo
	for _, ph := range f.photos {
		if ph.DeletedAt != nil {
			continue
		}
		if !p.IncludePending && ph.Status != StatusReady {
			continue
		}
		out = append(out, *ph)
	}
	return out, nil
}

func (f *fakeRepo) AlbumRefs(_ context.Context, _ []string) (map[string][]AlbumRef, error) {
	return map[string][]AlbumRef{}, nil
}

// fakeStore is an in-memory storage.ObjectStorage.
type fakeStore struct {
	objects   map[string]*storage.ObjectInfo
	deleted   []string
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]*storage.ObjectInfo{}}
}

func (f *fakeStore) PresignPut(_ context.Context, key, contentType string) (*storage.UploadGrant, error) {
	return &storage.UploadGrant{
		URL:       "https://upload.example.com/" + key,
		Headers:   map[string]string{"Content-Type": contentType},
		ExpiresIn: 300,
	}, nil
}

func (f *fakeStore) Stat(_ context.Context, key string) (*storage.ObjectInfo, error) {
	info, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return info, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func (f *fakeStore) PublicURL(key string) string {
	return storage.PublicURL("https://cdn.example.com", key)
}

func newTestService() (*Service, *fakeRepo, *fakeStore) {
	repo := newFakeRepo()
	store := newFakeStore()
	return NewService(repo, store, "photos"), repo, store
}

func TestRequestUploadRejectsBadContentType(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, ct := range []string{"", "image/gif", "application/pdf"} {
		_, err := svc.RequestUpload(context.Background(), nil, UploadRequest{
			FileName: "a.bin", ContentType: ct, Size: 100,
		})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("contentType %q: got %v, want ValidationError", ct, err)
		}
	}
	if len(repo.photos) != 0 {
		t.Errorf("rejected uploads created %d photo rows, want 0", len(repo.photos))
	}
}

func TestRequestUploadRejectsBadSize(t *testing.T) {
	svc, repo, _ := newTestService()

	for _, size := range []int64{0, -1, MaxFileSizeBytes + 1, 11_000_000} {
		_, err := svc.RequestUpload(context.Background(), nil, UploadRequest{
			FileName: "a.jpg", ContentType: "image/jpeg", Size: size,
		})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("size %d: got %v, want ValidationError", size, err)
		}
	}
	if len(repo.photos) != 0 {
		t.Errorf("rejected uploads created %d photo rows, want 0", len(repo.photos))
	}
}

func TestRequestUploadHappyPath(t *testing.T) {
	svc, repo, _ := newTestService()

	ticket, err := svc.RequestUpload(context.Background(), nil, UploadRequest{
		FileName: "my trip/IMG 1.jpg", ContentType: "image/jpeg", Size: 1234,
	})
	if err != nil {
		t.Fatalf("RequestUpload: %v", err)
	}
	if ticket.PhotoID == "" || ticket.Key == "" || ticket.UploadURL == "" {
		t.Fatalf("incomplete ticket: %+v", ticket)
	}
	if ticket.ExpiresIn != 300 {
		t.Errorf("ExpiresIn = %d, want 300", ticket.ExpiresIn)
	}

	ph := repo.photos[ticket.PhotoID]
	if ph == nil {
		t.Fatal("no photo row created")
	}
	if ph.Status != StatusPending {
		t.Errorf("status = %q, want PENDING", ph.Status)
	}
	if ph.OriginalName != "IMG 1.jpg" {
		t.Errorf("originalName = %q, want path-stripped %q", ph.OriginalName, "IMG 1.jpg")
	}
}

func TestRequestUploadUnknownAlbum(t *testing.T) {
	svc, _, _ := newTestService()

	missing := "no-such-album"
	_, err := svc.RequestUpload(context.Background(), nil, UploadRequest{
		FileName: "a.jpg", ContentType: "image/jpeg", Size: 10, AlbumID: &missing,
	})
	if !errors.Is(err, ErrAlbumNotFound) {
		t.Errorf("got %v, want ErrAlbumNotFound", err)
	}
}

// pending seeds a PENDING photo and returns its id.
func pending(t *testing.T, svc *Service) *UploadTicket {
	t.Helper()
	ticket, err := svc.RequestUpload(context.Background(), nil, UploadRequest{
		FileName: "a.jpg", ContentType: "image/jpeg", Size: 100,
	})
	if err != nil {
		t.Fatalf("seed upload: %v", err)
	}
	return ticket
}

func TestConfirmUploadObjectMissing(t *testing.T) {
	svc, repo, _ := newTestService()
	ticket := pending(t, svc)

	_, err := svc.ConfirmUpload(context.Background(), ticket.PhotoID)
	if !errors.Is(err, ErrObjectMissing) {
		t.Fatalf("got %v, want ErrObjectMissing", err)
	}
	if repo.photos[ticket.PhotoID].Status != StatusPending {
		t.Error("failed confirmation must leave photo PENDING")
	}
}

func TestConfirmUploadMismatches(t *testing.T) {
	tests := []struct {
		name    string
		info    storage.ObjectInfo
		wantErr error
	}{
		{"type not allowed", storage.ObjectInfo{ContentType: "text/html", Size: 100}, ErrInvalidContentType},
		{"type differs", storage.ObjectInfo{ContentType: "image/png", Size: 100}, ErrContentTypeMismatch},
		{"size zero", storage.ObjectInfo{ContentType: "image/jpeg", Size: 0}, ErrInvalidSize},
		{"size over max", storage.ObjectInfo{ContentType: "image/jpeg", Size: MaxFileSizeBytes + 1}, ErrInvalidSize},
		{"size differs", storage.ObjectInfo{ContentType: "image/jpeg", Size: 99}, ErrSizeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, store := newTestService()
			ticket := pending(t, svc)
			info := tt.info
			store.objects[ticket.Key] = &info

			_, err := svc.ConfirmUpload(context.Background(), ticket.PhotoID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if repo.photos[ticket.PhotoID].Status != StatusPending {
				t.Error("failed confirmation must leave photo PENDING")
			}
		})
	}
}

func TestConfirmUploadIdempotencyGuard(t *testing.T) {
	svc, repo, store := newTestService()
	ticket := pending(t, svc)
	store.objects[ticket.Key] = &storage.ObjectInfo{ContentType: "image/jpeg", Size: 100}

	result, err := svc.ConfirmUpload(context.Background(), ticket.PhotoID)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if result.Status != StatusReady {
		t.Errorf("status = %q, want READY", result.Status)
	}

	_, err = svc.ConfirmUpload(context.Background(), ticket.PhotoID)
	if !errors.Is(err, ErrAlreadyConfirmed) {
		t.Fatalf("second confirm: got %v, want ErrAlreadyConfirmed", err)
	}
	if repo.photos[ticket.PhotoID].Status != StatusReady {
		t.Error("second confirm must not change READY status")
	}
}

func TestConfirmUploadUnknownPhoto(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.ConfirmUpload(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestDeleteSwallowsStorageFailure(t *testing.T) {
	svc, repo, store := newTestService()
	ticket := pending(t, svc)
	store.deleteErr = errors.New("storage unreachable")

	if err := svc.Delete(context.Background(), ticket.PhotoID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if repo.photos[ticket.PhotoID].Status != StatusDeleted {
		t.Error("photo row must be soft-deleted even when storage delete fails")
	}
	if len(store.deleted) != 1 || store.deleted[0] != ticket.Key {
		t.Errorf("storage delete attempted for %v, want [%q]", store.deleted, ticket.Key)
	}
}

func TestDeleteUnknownPhoto(t *testing.T) {
	svc, _, _ := newTestService()
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
