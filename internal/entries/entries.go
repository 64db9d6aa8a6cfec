// Package entries provides access to the movies/series entry records the
// image store joins against. Entries are the authoritative side of the
// image/entry attachment relation.
package entries

import (
	"context"
	"errors"

	"mediashelf/internal/model"
)

// ErrNotFound is returned when an entry id does not resolve.
var ErrNotFound = errors.New("entry not found")

// Store is the entry collaborator surface the image store consumes.
type Store interface {
	// List returns all entries.
	List(ctx context.Context) ([]*model.Entry, error)

	// Get returns the entry with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Entry, error)

	// Update persists a mutated entry (called after attach/detach).
	Update(ctx context.Context, e *model.Entry) error

	// Create persists a new entry.
	Create(ctx context.Context, e *model.Entry) error
}
