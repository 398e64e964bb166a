package album

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lumen/gallery/internal/middleware"
	"github.com/lumen/gallery/internal/response"
)

// Handler holds HTTP handlers for album endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new album Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Title       string  `json:"title"       example:"Summer"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  string  `json:"visibility"  example:"PUBLIC"`
	Order       *int    `json:"order,omitempty"`
}

type updateRequest struct {
	Title       *string `json:"title,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

type addPhotosRequest struct {
	PhotoIDs []string `json:"photoIds"`
}

type reorderRequest struct {
	OrderedPhotoIDs []string `json:"orderedPhotoIds"`
}

type coverRequest struct {
	PhotoID *string `json:"photoId"`
}

type addedData struct {
	Added int `json:"added"`
}

// Create godoc
//
//	@Summary		Create album
//	@Description	Creates an album; the slug is derived from the title when absent and uniquified among live albums.
//	@Tags			albums
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		createRequest	true	"New album"
//	@Success		200		{object}	response.Envelope{data=Created}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/albums [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	created, err := h.svc.Create(r.Context(), adminIDFrom(r), CreateInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Visibility:  req.Visibility,
		Order:       req.Order,
	})
	if !respondErr(w, err) {
		response.OK(w, created)
	}
}

// List godoc
//
//	@Summary		List albums (admin)
//	@Description	All live albums with photo counts and resolved cover URLs.
//	@Tags			albums
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=[]ListItem}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), false)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"items": items})
}

// ListPublic godoc
//
//	@Summary		List albums (public)
//	@Description	PUBLIC albums only, for visitors.
//	@Tags			albums
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]ListItem}
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums/public [get]
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), true)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"items": items})
}

// GetBySlug godoc
//
//	@Summary		View album (public)
//	@Description	A PUBLIC or UNLISTED album and its READY photos in display order.
//	@Tags			albums
//	@Produce		json
//	@Param			slug	path		string	true	"Album slug"
//	@Success		200	{object}	response.Envelope{data=Contents}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums/public/{slug} [get]
func (h *Handler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	contents, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if !respondErr(w, err) {
		response.OK(w, contents)
	}
}

// Update godoc
//
//	@Summary		Update album
//	@Description	Partial update; a provided slug is renormalized and reuniquified excluding this album.
//	@Tags			albums
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Album id"
//	@Param			request	body		updateRequest	true	"Fields to change"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/albums/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	err := h.svc.Update(r.Context(), id, UpdateInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Visibility:  req.Visibility,
		Order:       req.Order,
	})
	if !respondErr(w, err) {
		response.OK(w, map[string]bool{"ok": true})
	}
}

// Delete godoc
//
//	@Summary		Delete album
//	@Description	Soft delete; memberships stay but become unreachable through listings.
//	@Tags			albums
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Album id"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	if !respondErr(w, h.svc.Delete(r.Context(), id)) {
		response.OK(w, map[string]bool{"ok": true})
	}
}

// Photos godoc
//
//	@Summary		List album photos (admin)
//	@Description	The album's READY photos in position order.
//	@Tags			albums
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Album id"
//	@Success		200	{object}	response.Envelope{data=Contents}
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums/{id}/photos [get]
func (h *Handler) Photos(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	contents, err := h.svc.Photos(r.Context(), id)
	if !respondErr(w, err) {
		response.OK(w, contents)
	}
}

// AddPhotos godoc
//
//	@Summary		Add photos to album
//	@Description	Appends live photos at increasing positions; unknown ids are dropped, duplicates ignored.
//	@Tags			albums
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string				true	"Album id"
//	@Param			request	body		addPhotosRequest	true	"Photo ids"
//	@Success		200		{object}	response.Envelope{data=addedData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/albums/{id}/photos [post]
func (h *Handler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}

	var req addPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ids, issue := uuidList(req.PhotoIDs, 200, "photoIds")
	if issue != "" {
		response.ValidationFailed(w, []string{issue})
		return
	}

	added, err := h.svc.AddPhotos(r.Context(), id, ids)
	if !respondErr(w, err) {
		response.OK(w, addedData{Added: added})
	}
}

// RemovePhoto godoc
//
//	@Summary		Remove photo from album
//	@Description	Deletes the membership; removing an absent membership succeeds.
//	@Tags			albums
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Album id"
//	@Param			photoId	path		string	true	"Photo id"
//	@Success		200	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/albums/{id}/photos/{photoId} [delete]
func (h *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}
	photoID := chi.URLParam(r, "photoId")
	if _, err := uuid.Parse(photoID); err != nil {
		// Not a valid id, so certainly not a member; removal is idempotent.
		response.OK(w, map[string]bool{"ok": true})
		return
	}
	if !respondErr(w, h.svc.RemovePhoto(r.Context(), id, photoID)) {
		response.OK(w, map[string]bool{"ok": true})
	}
}

// Reorder godoc
//
//	@Summary		Reorder album photos
//	@Description	Applies the supplied complete ordering as a single all-or-nothing unit.
//	@Tags			albums
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Album id"
//	@Param			request	body		reorderRequest	true	"Full ordered photo ids"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/albums/{id}/photos/reorder [put]
func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	ids, issue := uuidList(req.OrderedPhotoIDs, 2000, "orderedPhotoIds")
	if issue != "" {
		response.ValidationFailed(w, []string{issue})
		return
	}

	if !respondErr(w, h.svc.Reorder(r.Context(), id, ids)) {
		response.OK(w, map[string]bool{"ok": true})
	}
}

// SetCover godoc
//
//	@Summary		Set or clear album cover
//	@Description	A non-null photoId must be a member of the album; null clears the cover.
//	@Tags			albums
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Album id"
//	@Param			request	body		coverRequest	true	"Cover photo id or null"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/albums/{id}/cover [put]
func (h *Handler) SetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := albumID(w, r)
	if !ok {
		return
	}

	var req coverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.PhotoID != nil {
		if _, err := uuid.Parse(*req.PhotoID); err != nil {
			response.Fail(w, http.StatusBadRequest, "PHOTO_NOT_IN_ALBUM", "photo not in album")
			return
		}
	}

	if !respondErr(w, h.svc.SetCover(r.Context(), id, req.PhotoID)) {
		response.OK(w, map[string]bool{"ok": true})
	}
}

// albumID validates the {id} path parameter; an invalid UUID is a 404.
func albumID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		response.NotFound(w, "NOT_FOUND", "album not found")
		return "", false
	}
	return id, true
}

// uuidList validates a bounded list of UUIDs; the returned issue is empty on success.
func uuidList(ids []string, max int, field string) ([]string, string) {
	if len(ids) == 0 {
		return nil, field + " must not be empty"
	}
	if len(ids) > max {
		return nil, fmt.Sprintf("%s must contain at most %d ids", field, max)
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, field + " contains an invalid id"
		}
	}
	return ids, ""
}

// respondErr maps service errors to responses; it reports whether it wrote one.
func respondErr(w http.ResponseWriter, err error) bool {
	var verr *ValidationError
	switch {
	case err == nil:
		return false
	case errors.As(err, &verr):
		response.ValidationFailed(w, verr.Issues)
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "NOT_FOUND", "album not found")
	case errors.Is(err, ErrPhotoNotInAlbum):
		response.Fail(w, http.StatusBadRequest, "PHOTO_NOT_IN_ALBUM", "photo not in album")
	default:
		response.InternalError(w)
	}
	return true
}

// adminIDFrom extracts the authenticated admin id injected by RequireAdmin.
func adminIDFrom(r *http.Request) *string {
	id, ok := r.Context().Value(middleware.AdminIDKey).(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}
