package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mediashelf/internal/config"
	"mediashelf/internal/entries"
	"mediashelf/internal/model"
	"mediashelf/internal/store"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	Images  *store.Store
	Entries entries.Store
	Config  *config.Config
}

// errAmbiguous marks a short-hash prefix matching more than one image.
var errAmbiguous = errors.New("ambiguous image reference")

// findImage resolves a short-hash prefix to exactly one image.
// Returns nil when nothing matches and errAmbiguous when several do.
func (h *Handler) findImage(ctx context.Context, hashPrefix string) (*model.Image, error) {
	imgs, err := h.Images.List(ctx, "#"+hashPrefix, nil)
	if err != nil {
		return nil, err
	}
	switch len(imgs) {
	case 0:
		return nil, nil
	case 1:
		return imgs[0], nil
	default:
		return nil, fmt.Errorf("%w: %q matches %d images", errAmbiguous, hashPrefix, len(imgs))
	}
}

// decodeJSONBody decodes a request body into v; an empty body is an error
// the caller may choose to ignore.
func decodeJSONBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// entryRef is the entry shape embedded in image responses.
type entryRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// imageView is the JSON shape of one image.
type imageView struct {
	StorageKey string            `json:"storage_key"`
	ID         string            `json:"id"`
	ShortHash  string            `json:"short_hash"`
	SizeBytes  int64             `json:"size_bytes"`
	Uploaded   *time.Time        `json:"uploaded,omitempty"`
	Tags       map[string]string `json:"tags"`
	Entries    []entryRef        `json:"entries"`
	URL        string            `json:"url,omitempty"`
}

func viewOf(img *model.Image) imageView {
	v := imageView{
		StorageKey: img.StorageKey,
		ID:         img.ID(),
		ShortHash:  img.ShortHash(),
		SizeBytes:  img.SizeBytes,
		Tags:       img.Tags,
		Entries:    []entryRef{},
	}
	if v.Tags == nil {
		v.Tags = map[string]string{}
	}
	if t, err := img.Time(); err == nil {
		v.Uploaded = &t
	}
	for _, e := range img.Entries {
		v.Entries = append(v.Entries, entryRef{ID: e.ID, Title: e.Title})
	}
	return v
}
