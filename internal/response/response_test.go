package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if env := decode(t, rec); !env.Success || env.Error != "" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestValidationFailed(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationFailed(rec, []string{"size must be positive"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	env := decode(t, rec)
	if env.Error != "BAD_REQUEST" || len(env.Issues) != 1 {
		t.Errorf("envelope = %+v, want BAD_REQUEST with one issue", env)
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name     string
		write    func(w http.ResponseWriter)
		status   int
		wantCode string
	}{
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "no token") }, 401, "UNAUTHORIZED"},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "nope") }, 403, "FORBIDDEN"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "ALBUM_NOT_FOUND", "gone") }, 404, "ALBUM_NOT_FOUND"},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "ALREADY_CONFIRMED", "done") }, 409, "ALREADY_CONFIRMED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if env := decode(t, rec); env.Error != tt.wantCode || env.Success {
				t.Errorf("envelope = %+v, want code %q", env, tt.wantCode)
			}
		})
	}
}
