package model

import (
	"sort"

	"github.com/google/uuid"
)

// Entry is a single movies/series record. Only the fields the image store
// needs are modelled here; the authoritative attachment relation lives in
// ImageIDs.
type Entry struct {
	ID    string
	Title string
	Year  int

	// ImageIDs is the set of storage keys of the images attached to this
	// entry. This set is the source of truth for attachments; an image's
	// Entries list is derived from it.
	ImageIDs map[string]struct{}
}

// NewEntry creates an entry with a fresh id and an empty image set.
func NewEntry(title string, year int) *Entry {
	return &Entry{
		ID:       uuid.New().String(),
		Title:    title,
		Year:     year,
		ImageIDs: make(map[string]struct{}),
	}
}

// HasImage reports whether the entry references the given storage key.
func (e *Entry) HasImage(storageKey string) bool {
	_, ok := e.ImageIDs[storageKey]
	return ok
}

// AttachImage adds a storage key to the entry's image set.
// Returns false if the image was already attached.
func (e *Entry) AttachImage(storageKey string) bool {
	if e.ImageIDs == nil {
		e.ImageIDs = make(map[string]struct{})
	}
	if e.HasImage(storageKey) {
		return false
	}
	e.ImageIDs[storageKey] = struct{}{}
	return true
}

// DetachImage removes a storage key from the entry's image set.
// Returns false if the image was not attached.
func (e *Entry) DetachImage(storageKey string) bool {
	if !e.HasImage(storageKey) {
		return false
	}
	delete(e.ImageIDs, storageKey)
	return true
}

// SortedImageIDs returns the entry's storage keys in stable order.
func (e *Entry) SortedImageIDs() []string {
	ids := make([]string, 0, len(e.ImageIDs))
	for id := range e.ImageIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	ids := make(map[string]struct{}, len(e.ImageIDs))
	for id := range e.ImageIDs {
		ids[id] = struct{}{}
	}
	return &Entry{ID: e.ID, Title: e.Title, Year: e.Year, ImageIDs: ids}
}
