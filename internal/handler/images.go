package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"mediashelf/internal/api"
)

// ListImages handles GET /v1/images?filter=<token>.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	filterToken := r.URL.Query().Get("filter")
	if filterToken == "" {
		filterToken = "*"
	}

	imgs, err := h.Images.List(r.Context(), filterToken, nil)
	if err != nil {
		api.Internal(w, "failed to list images: "+err.Error())
		return
	}

	views := make([]imageView, 0, len(imgs))
	for _, img := range imgs {
		views = append(views, viewOf(img))
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"images": views}))
}

// UploadImage handles POST /v1/images -- multipart upload with an optional
// tags field holding a JSON object.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		api.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		api.BadRequest(w, "missing required field: file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.BadRequest(w, "reading upload: "+err.Error())
		return
	}

	var tags map[string]string
	if tagsStr := r.FormValue("tags"); tagsStr != "" {
		if err := json.Unmarshal([]byte(tagsStr), &tags); err != nil {
			api.BadRequest(w, "invalid tags JSON: "+err.Error())
			return
		}
	}

	img, err := h.Images.Upload(r.Context(), data, tags)
	if err != nil {
		// A payload that does not decode is the caller's problem, not ours.
		api.UnprocessableEntity(w, "upload failed: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(viewOf(img)))
}

// ShowImage handles GET /v1/images/{short_hash} -- returns the record with
// a presigned display URL.
func (h *Handler) ShowImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.findImage(r.Context(), chi.URLParam(r, "short_hash"))
	if err != nil {
		if errors.Is(err, errAmbiguous) {
			api.BadRequest(w, err.Error())
			return
		}
		api.Internal(w, err.Error())
		return
	}
	if img == nil {
		api.NotFound(w, "image not found")
		return
	}

	ttl := time.Duration(h.Config.PresignTTLSeconds) * time.Second
	url, err := h.Images.PresignURL(r.Context(), img, ttl)
	if err != nil {
		api.Internal(w, "failed to presign: "+err.Error())
		return
	}

	view := viewOf(img)
	view.URL = url
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(view))
}

// DeleteImage handles DELETE /v1/images/{short_hash}.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.findImage(r.Context(), chi.URLParam(r, "short_hash"))
	if err != nil {
		if errors.Is(err, errAmbiguous) {
			api.BadRequest(w, err.Error())
			return
		}
		api.Internal(w, err.Error())
		return
	}
	if img == nil {
		api.NotFound(w, "image not found")
		return
	}

	if err := h.Images.Delete(r.Context(), img); err != nil {
		api.Internal(w, "failed to delete: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(struct{}{}))
}

// SetImageTags handles PUT /v1/images/{short_hash}/tags -- replaces the
// object's tag set.
func (h *Handler) SetImageTags(w http.ResponseWriter, r *http.Request) {
	img, err := h.findImage(r.Context(), chi.URLParam(r, "short_hash"))
	if err != nil {
		if errors.Is(err, errAmbiguous) {
			api.BadRequest(w, err.Error())
			return
		}
		api.Internal(w, err.Error())
		return
	}
	if img == nil {
		api.NotFound(w, "image not found")
		return
	}

	var tags map[string]string
	if err := json.NewDecoder(r.Body).Decode(&tags); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	if err := h.Images.SetTags(r.Context(), img, tags); err != nil {
		api.Internal(w, "failed to set tags: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(viewOf(img)))
}
