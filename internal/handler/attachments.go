package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"mediashelf/internal/api"
	"mediashelf/internal/entries"
	"mediashelf/internal/model"
)

// attachResponse reports whether an attach/detach actually changed state.
type attachResponse struct {
	Changed bool `json:"changed"`
}

// resolvePair resolves the image and entry named in the URL. A nil image
// with a nil error means the 404 was already written.
func (h *Handler) resolvePair(w http.ResponseWriter, r *http.Request) (*model.Image, *model.Entry) {
	img, err := h.findImage(r.Context(), chi.URLParam(r, "short_hash"))
	if err != nil {
		if errors.Is(err, errAmbiguous) {
			api.BadRequest(w, err.Error())
			return nil, nil
		}
		api.Internal(w, err.Error())
		return nil, nil
	}
	if img == nil {
		api.NotFound(w, "image not found")
		return nil, nil
	}

	entry, err := h.Entries.Get(r.Context(), chi.URLParam(r, "entry_id"))
	if err != nil {
		if errors.Is(err, entries.ErrNotFound) {
			api.NotFound(w, "entry not found")
			return nil, nil
		}
		api.Internal(w, err.Error())
		return nil, nil
	}
	return img, entry
}

// AttachImage handles POST /v1/images/{short_hash}/entries/{entry_id}.
func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
	img, entry := h.resolvePair(w, r)
	if img == nil {
		return
	}
	changed, err := h.Images.Attach(r.Context(), img, entry)
	if err != nil {
		api.Internal(w, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(attachResponse{Changed: changed}))
}

// DetachImage handles DELETE /v1/images/{short_hash}/entries/{entry_id}.
func (h *Handler) DetachImage(w http.ResponseWriter, r *http.Request) {
	img, entry := h.resolvePair(w, r)
	if img == nil {
		return
	}
	changed, err := h.Images.Detach(r.Context(), img, entry)
	if err != nil {
		api.Internal(w, err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(attachResponse{Changed: changed}))
}
