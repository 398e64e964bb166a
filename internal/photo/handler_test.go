package photo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen/gallery/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Issues  []string        `json:"issues"`
}

func newTestRouter() (*chi.Mux, *fakeRepo, *fakeStore) {
	svc, repo, store := newTestService()
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Post("/photos/presign", h.Presign)
	r.Post("/photos/confirm", h.Confirm)
	r.Get("/photos", h.List)
	r.Get("/photos/public", h.ListPublic)
	r.Delete("/photos/{id}", h.Delete)
	return r, repo, store
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return rec, env
}

func TestPresignOversizeRejected(t *testing.T) {
	r, repo, _ := newTestRouter()

	rec, env := doJSON(t, r, http.MethodPost, "/photos/presign",
		`{"fileName":"big.jpg","contentType":"image/jpeg","size":11000000}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.Error != "BAD_REQUEST" || len(env.Issues) == 0 {
		t.Errorf("envelope = %+v, want BAD_REQUEST with issues", env)
	}
	if len(repo.photos) != 0 {
		t.Error("rejected presign must not create a photo row")
	}
}

func TestPresignHappyPath(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, env := doJSON(t, r, http.MethodPost, "/photos/presign",
		`{"fileName":"IMG.jpg","contentType":"image/jpeg","size":1234}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	var ticket UploadTicket
	if err := json.Unmarshal(env.Data, &ticket); err != nil {
		t.Fatalf("decode ticket: %v", err)
	}
	if ticket.PhotoID == "" || ticket.UploadURL == "" || ticket.CdnURL == "" {
		t.Errorf("incomplete ticket: %+v", ticket)
	}
}

func TestConfirmSizeMismatch(t *testing.T) {
	r, repo, store := newTestRouter()

	_, env := doJSON(t, r, http.MethodPost, "/photos/presign",
		`{"fileName":"a.jpg","contentType":"image/jpeg","size":100}`)
	var ticket UploadTicket
	if err := json.Unmarshal(env.Data, &ticket); err != nil {
		t.Fatal(err)
	}
	store.objects[ticket.Key] = &storage.ObjectInfo{ContentType: "image/jpeg", Size: 99}

	rec, env := doJSON(t, r, http.MethodPost, "/photos/confirm",
		`{"photoId":"`+ticket.PhotoID+`"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.Error != "SIZE_MISMATCH" {
		t.Errorf("error code = %q, want SIZE_MISMATCH", env.Error)
	}
	if repo.photos[ticket.PhotoID].Status != StatusPending {
		t.Error("photo must remain PENDING after a failed confirmation")
	}
}

func TestConfirmTwiceConflicts(t *testing.T) {
	r, _, store := newTestRouter()

	_, env := doJSON(t, r, http.MethodPost, "/photos/presign",
		`{"fileName":"a.jpg","contentType":"image/jpeg","size":100}`)
	var ticket UploadTicket
	if err := json.Unmarshal(env.Data, &ticket); err != nil {
		t.Fatal(err)
	}
	store.objects[ticket.Key] = &storage.ObjectInfo{ContentType: "image/jpeg", Size: 100}

	rec, _ := doJSON(t, r, http.MethodPost, "/photos/confirm", `{"photoId":"`+ticket.PhotoID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("first confirm: status = %d, want 200", rec.Code)
	}

	rec, env = doJSON(t, r, http.MethodPost, "/photos/confirm", `{"photoId":"`+ticket.PhotoID+`"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("second confirm: status = %d, want 409", rec.Code)
	}
	if env.Error != "ALREADY_CONFIRMED" {
		t.Errorf("error code = %q, want ALREADY_CONFIRMED", env.Error)
	}
}

func TestConfirmUnknownPhoto(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, env := doJSON(t, r, http.MethodPost, "/photos/confirm",
		`{"photoId":"`+uuid.NewString()+`"}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if env.Error != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", env.Error)
	}
}

func TestDeleteUnknownPhotoViaHTTP(t *testing.T) {
	r, _, _ := newTestRouter()

	rec, env := doJSON(t, r, http.MethodDelete, "/photos/"+uuid.NewString(), "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if env.Error != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", env.Error)
	}
}

func TestPublicListHidesPending(t *testing.T) {
	r, _, store := newTestRouter()

	_, env := doJSON(t, r, http.MethodPost, "/photos/presign",
		`{"fileName":"a.jpg","contentType":"image/jpeg","size":100}`)
	var ticket UploadTicket
	if err := json.Unmarshal(env.Data, &ticket); err != nil {
		t.Fatal(err)
	}

	rec, env := doJSON(t, r, http.MethodGet, "/photos/public", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var page PublicPage
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 0 {
		t.Errorf("public listing shows %d PENDING photos, want 0", len(page.Items))
	}

	store.objects[ticket.Key] = &storage.ObjectInfo{ContentType: "image/jpeg", Size: 100}
	if rec, _ := doJSON(t, r, http.MethodPost, "/photos/confirm", `{"photoId":"`+ticket.PhotoID+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d", rec.Code)
	}

	_, env = doJSON(t, r, http.MethodGet, "/photos/public", "")
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 {
		t.Errorf("public listing shows %d photos after confirm, want 1", len(page.Items))
	}
}
