// Package blob abstracts the remote object store holding image bytes and
// their per-object tag sets.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a storage key does not resolve to an object.
var ErrNotFound = errors.New("object not found")

// Object describes one listed object: its key, its size, and the content
// signature (ETag) the store derived from its bytes. The signature is what
// duplicate detection groups by; it is unrelated to the image's short hash.
type Object struct {
	Key       string
	Size      int64
	Signature string
}

// ObjectStore is the blob-store surface the image store consumes. All calls
// are blocking network I/O and honor ctx cancellation.
type ObjectStore interface {
	// CheckAccess verifies the store is reachable and authorized.
	// The image store treats a failure here as fatal at construction.
	CheckAccess(ctx context.Context) error

	// List returns every object under the configured prefix.
	List(ctx context.Context) ([]Object, error)

	// Get returns an object's bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes an object's bytes.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes an object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetTags returns the object's tag set.
	GetTags(ctx context.Context, key string) (map[string]string, error)

	// PutTags replaces the object's tag set.
	PutTags(ctx context.Context, key string, tags map[string]string) error

	// PresignGet returns a time-limited, credential-free GET URL for the
	// object. TTLs are expected to be short; the URLs are for immediate,
	// one-shot display.
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
