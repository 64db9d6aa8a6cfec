package handler

import (
	"net/http"

	"mediashelf/internal/api"
	"mediashelf/internal/dupes"
	"mediashelf/internal/model"
	"mediashelf/internal/store"
)

// GetStats handles GET /v1/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Images.Stats(r.Context())
	if err != nil {
		api.Internal(w, "failed to compute stats: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(stats))
}

// CheckConsistency handles GET /v1/consistency. Warnings are advisory;
// the endpoint always answers 200.
func (h *Handler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.Images.CheckConsistency(r.Context())
	if err != nil {
		api.Internal(w, "consistency check failed: "+err.Error())
		return
	}
	if warnings == nil {
		warnings = []store.Warning{}
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"warnings": warnings}))
}

// duplicateGroupView is the JSON shape of one duplicate group.
type duplicateGroupView struct {
	Signature string   `json:"signature"`
	Images    []string `json:"images"`
}

// ListDuplicates handles GET /v1/duplicates.
func (h *Handler) ListDuplicates(w http.ResponseWriter, r *http.Request) {
	groups, err := h.Images.DuplicateGroups(r.Context())
	if err != nil {
		api.Internal(w, "failed to find duplicates: "+err.Error())
		return
	}
	views := make([]duplicateGroupView, 0, len(groups))
	for _, g := range groups {
		hashes := make([]string, 0, len(g.Keys))
		for _, key := range g.Keys {
			hashes = append(hashes, model.ShortHash(model.IDFromKey(key)))
		}
		views = append(views, duplicateGroupView{Signature: g.Signature, Images: hashes})
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"groups": views}))
}

// ResolveDuplicates handles POST /v1/duplicates/resolve. The request must
// carry {"confirm": true}; the plan keeps the earliest image per group and
// deletes the rest, detaching them from their entries.
func (h *Handler) ResolveDuplicates(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Confirm bool `json:"confirm"`
	}
	// An empty body means no confirmation.
	_ = decodeJSONBody(r, &body)
	if !body.Confirm {
		api.BadRequest(w, "duplicate cleanup requires explicit confirmation")
		return
	}

	groups, err := h.Images.DuplicateGroups(r.Context())
	if err != nil {
		api.Internal(w, "failed to find duplicates: "+err.Error())
		return
	}
	res := dupes.Resolve(groups)
	deleted, err := h.Images.ApplyResolution(r.Context(), res)
	if err != nil {
		api.Internal(w, "duplicate cleanup failed: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"deleted": deleted}))
}

// ReloadTags handles POST /v1/tags/reload -- drops and refetches the tag
// cache.
func (h *Handler) ReloadTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.Images.ReloadTags(r.Context(), nil)
	if err != nil {
		api.Internal(w, "failed to reload tags: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"loaded": len(tags)}))
}

// ClearCache handles POST /v1/cache/clear -- wipes the local byte cache.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Images.ClearLocalCache()
	if err != nil {
		api.Internal(w, "failed to clear cache: "+err.Error())
		return
	}
	api.WriteJSON(w, http.StatusOK, api.SuccessResponse(map[string]interface{}{"removed": removed}))
}
