package model

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// Image is the on-demand view of one stored image object: the raw object
// joined with its entry back-references and tags. It is never persisted as
// its own record; it exists only for as long as the listing that produced it.
type Image struct {
	// StorageKey is the object's full path in the blob store,
	// e.g. "movies-series-images/2025-05-15T20:01:02.123+02:00.png".
	// Immutable once created; keys are never reused after deletion.
	StorageKey string

	// SizeBytes is the object size reported by the listing; 0 when unknown.
	SizeBytes int64

	// Entries holds the entries referencing this image. Derived by scanning
	// all entries' image-id sets, not stored on the image itself.
	Entries []*Entry

	// Tags is the key/value metadata stored alongside the object.
	Tags map[string]string
}

// NewImageID returns a fresh image identifier: an ISO-8601 timestamp with
// timezone offset. Nanosecond resolution makes collisions under concurrent
// single-process use vanishingly unlikely.
func NewImageID(now time.Time) string {
	return now.Format(time.RFC3339Nano)
}

// StorageKeyFor builds the storage key for an image id under the given
// folder prefix.
func StorageKeyFor(prefix, id string) string {
	return prefix + "/" + id + ".png"
}

// IDFromKey returns the filename stem of a storage key, which is the
// image id (the generated timestamp without extension).
func IDFromKey(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ShortHash returns the first 8 hex characters of the SHA-1 of an image id.
// Display only: used for typed "#prefix" lookups, never for storage
// addressing or duplicate detection.
func ShortHash(id string) string {
	return HashOf(id)[:8]
}

// HashOf returns the full SHA-1 hex digest of an image id.
func HashOf(id string) string {
	sum := sha1.Sum([]byte(id))
	return hex.EncodeToString(sum[:])
}

// Timestamp parses an image id back into its creation time, localized
// for display.
func Timestamp(id string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse image id %q: %w", id, err)
	}
	return t.Local(), nil
}

// ID returns the image id derived from the storage key.
func (img *Image) ID() string {
	return IDFromKey(img.StorageKey)
}

// Filename returns the last path element of the storage key.
func (img *Image) Filename() string {
	return path.Base(img.StorageKey)
}

// ShortHash returns the image's display hash.
func (img *Image) ShortHash() string {
	return ShortHash(img.ID())
}

// Time returns the image's creation time derived from its id.
func (img *Image) Time() (time.Time, error) {
	return Timestamp(img.ID())
}

// Attached reports whether at least one entry references this image.
func (img *Image) Attached() bool {
	return len(img.Entries) > 0
}

// String renders a one-line summary like
// "Image(#ab12cd34; 15.05.2025 @ 20:01; 123 KB) (what=avatar) -> Dune".
func (img *Image) String() string {
	var b strings.Builder
	b.WriteString("Image(#")
	b.WriteString(img.ShortHash())
	if t, err := img.Time(); err == nil {
		fmt.Fprintf(&b, "; %s", t.Format("02.01.2006 @ 15:04"))
	}
	if img.SizeBytes > 0 {
		fmt.Fprintf(&b, "; %d KB", (img.SizeBytes+512)/1024)
	}
	b.WriteString(")")
	if len(img.Tags) > 0 {
		keys := make([]string, 0, len(img.Tags))
		for k := range img.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+img.Tags[k])
		}
		b.WriteString(" (" + strings.Join(pairs, ", ") + ")")
	}
	switch {
	case len(img.Entries) == 1:
		b.WriteString(" -> " + img.Entries[0].Title)
	case len(img.Entries) > 1:
		fmt.Fprintf(&b, " -> %d entries", len(img.Entries))
	}
	return b.String()
}
