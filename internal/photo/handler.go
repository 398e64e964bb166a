package photo

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen/gallery/internal/middleware"
	"github.com/lumen/gallery/internal/response"
)

// Handler holds HTTP handlers for photo endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new photo Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type presignRequest struct {
	FileName    string  `json:"fileName"    example:"IMG_4021.jpg"`
	ContentType string  `json:"contentType" example:"image/jpeg"`
	Size        int64   `json:"size"        example:"2048576"`
	AlbumID     *string `json:"albumId,omitempty"`
}

type confirmRequest struct {
	PhotoID string `json:"photoId" example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
}

// Presign godoc
//
//	@Summary		Create upload grant
//	@Description	Validates the declared file, records a PENDING photo, and returns a presigned PUT URL for a direct client-to-storage upload.
//	@Tags			photos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		presignRequest	true	"Declared upload"
//	@Success		200		{object}	response.Envelope{data=UploadTicket}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		403		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/photos/presign [post]
func (h *Handler) Presign(w http.ResponseWriter, r *http.Request) {
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.AlbumID != nil {
		if _, err := uuid.Parse(*req.AlbumID); err != nil {
			response.Fail(w, http.StatusBadRequest, "ALBUM_NOT_FOUND", "album not found")
			return
		}
	}

	adminID := adminIDFrom(r)
	ticket, err := h.svc.RequestUpload(r.Context(), adminID, UploadRequest{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		AlbumID:     req.AlbumID,
	})

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Issues)
	case errors.Is(err, ErrAlbumNotFound):
		response.Fail(w, http.StatusBadRequest, "ALBUM_NOT_FOUND", "album not found")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, ticket)
	}
}

// Confirm godoc
//
//	@Summary		Confirm upload
//	@Description	Verifies that the stored object exists and matches the declared content type and size, then transitions the photo to READY.
//	@Tags			photos
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		confirmRequest	true	"Photo to confirm"
//	@Success		200		{object}	response.Envelope{data=ConfirmResult}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/photos/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if _, err := uuid.Parse(req.PhotoID); err != nil {
		response.NotFound(w, "NOT_FOUND", "photo not found")
		return
	}

	result, err := h.svc.ConfirmUpload(r.Context(), req.PhotoID)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "NOT_FOUND", "photo not found")
	case errors.Is(err, ErrAlreadyConfirmed):
		response.Conflict(w, "ALREADY_CONFIRMED", "photo is not pending")
	case errors.Is(err, ErrObjectMissing):
		response.Conflict(w, "OBJECT_NOT_FOUND", "stored object not found")
	case errors.Is(err, ErrInvalidContentType):
		response.Fail(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "stored object content type not allowed")
	case errors.Is(err, ErrContentTypeMismatch):
		response.Fail(w, http.StatusBadRequest, "CONTENT_TYPE_MISMATCH", "stored object content type differs from declared")
	case errors.Is(err, ErrInvalidSize):
		response.Fail(w, http.StatusBadRequest, "INVALID_SIZE", "stored object size out of bounds")
	case errors.Is(err, ErrSizeMismatch):
		response.Fail(w, http.StatusBadRequest, "SIZE_MISMATCH", "stored object size differs from declared")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, result)
	}
}

// List godoc
//
//	@Summary		List photos (admin)
//	@Description	Cursor-paginated listing of non-deleted photos, newest first, with album memberships.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit			query		int		false	"Page size (1-100, default 60)"
//	@Param			cursor			query		string	false	"Last photo id of the previous page"
//	@Param			includePending	query		bool	false	"Include PENDING photos (default true)"
//	@Success		200	{object}	response.Envelope{data=AdminPage}
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := pageParams(w, r)
	if !ok {
		return
	}

	includePending := true
	if v := r.URL.Query().Get("includePending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "invalid includePending")
			return
		}
		includePending = b
	}

	page, err := h.svc.List(r.Context(), ListParams{Limit: limit, Cursor: cursor, IncludePending: includePending})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, page)
}

// ListPublic godoc
//
//	@Summary		List photos (public)
//	@Description	Cursor-paginated listing of READY photos for visitors.
//	@Tags			photos
//	@Produce		json
//	@Param			limit	query		int		false	"Page size (1-100, default 60)"
//	@Param			cursor	query		string	false	"Last photo id of the previous page"
//	@Success		200	{object}	response.Envelope{data=PublicPage}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/public [get]
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	limit, cursor, ok := pageParams(w, r)
	if !ok {
		return
	}

	page, err := h.svc.ListPublic(r.Context(), limit, cursor)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, page)
}

// Delete godoc
//
//	@Summary		Delete photo
//	@Description	Soft-deletes the photo record, then removes the stored object best-effort.
//	@Tags			photos
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Photo id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/photos/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(w, "NOT_FOUND", "photo not found")
		return
	}

	err := h.svc.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "NOT_FOUND", "photo not found")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, map[string]bool{"ok": true})
	}
}

// pageParams parses the shared limit/cursor query parameters. It writes the
// error response itself and returns ok=false on invalid input.
func pageParams(w http.ResponseWriter, r *http.Request) (limit int, cursor string, ok bool) {
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			response.BadRequest(w, "limit must be an integer between 1 and 100")
			return 0, "", false
		}
		limit = n
	}

	cursor = q.Get("cursor")
	if cursor != "" {
		if _, err := uuid.Parse(cursor); err != nil {
			response.BadRequest(w, "invalid cursor")
			return 0, "", false
		}
	}
	return limit, cursor, true
}

// adminIDFrom extracts the authenticated admin id injected by RequireAdmin.
func adminIDFrom(r *http.Request) *string {
	id, ok := r.Context().Value(middleware.AdminIDKey).(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}
