// Package store is the image content store: it joins blob-store objects
// with entry back-references and tags, and carries every image operation
// the front-ends expose.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mediashelf/internal/blob"
	"mediashelf/internal/dupes"
	"mediashelf/internal/entries"
	"mediashelf/internal/filter"
	"mediashelf/internal/imageproc"
	"mediashelf/internal/localcache"
	"mediashelf/internal/model"
	"mediashelf/internal/tagcache"
)

// DefaultPrefix is the folder under which all image objects live.
const DefaultPrefix = "movies-series-images"

// Warning reports an entry referencing a storage key with no backing
// object. Advisory only: the two sides of the attachment relation are
// mutated independently and can diverge.
type Warning struct {
	EntryID    string `json:"entry_id"`
	EntryTitle string `json:"entry_title"`
	StorageKey string `json:"storage_key"`
}

// Store is the image store façade.
type Store struct {
	objects blob.ObjectStore
	entries entries.Store
	cache   *localcache.Cache
	tags    *tagcache.Cache
	logger  *slog.Logger
	prefix  string
	now     func() time.Time
}

// Options configures New. Cache may be nil to disable local caching; Now
// defaults to time.Now and exists for tests.
type Options struct {
	Objects blob.ObjectStore
	Entries entries.Store
	Cache   *localcache.Cache
	Prefix  string
	Logger  *slog.Logger
	Now     func() time.Time
}

// New builds a Store and probes blob-store access. An unreachable or
// unauthorized blob store is fatal here: the store is unusable, so the
// error surfaces immediately instead of on first use.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		objects: opts.Objects,
		entries: opts.Entries,
		cache:   opts.Cache,
		logger:  opts.Logger,
		prefix:  opts.Prefix,
		now:     opts.Now,
	}
	s.tags = tagcache.New(s.objects.GetTags, s.logger)
	if err := s.objects.CheckAccess(ctx); err != nil {
		return nil, fmt.Errorf("image store unusable: %w", err)
	}
	return s, nil
}

// List returns the images matching the filter token. tags may carry a
// previously loaded snapshot; pass nil to use (or populate) the tag cache.
//
// The entry join scans every entry's image-id set per listed object. That
// is O(objects x entries) and fine at personal-database scale; it is the
// complexity ceiling to revisit if either side grows large.
func (s *Store) List(ctx context.Context, filterToken string, tags map[string]map[string]string) ([]*model.Image, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*model.Image, len(objects))
	ordered := make([]*model.Image, 0, len(objects))
	for _, obj := range objects {
		img := &model.Image{StorageKey: obj.Key, SizeBytes: obj.Size}
		byKey[obj.Key] = img
		ordered = append(ordered, img)
	}

	all, err := s.entries.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range all {
		for key := range e.ImageIDs {
			if img, ok := byKey[key]; ok {
				img.Entries = append(img.Entries, e)
			}
		}
	}

	if tags == nil {
		tags, err = s.LoadTags(ctx, nil)
		if err != nil {
			return nil, err
		}
	}
	for key, img := range byKey {
		if t, ok := tags[key]; ok {
			img.Tags = t
		} else {
			img.Tags = map[string]string{}
		}
	}

	f := filter.Parse(filterToken)
	matched := make([]*model.Image, 0, len(ordered))
	for _, img := range ordered {
		if f.Match(img) {
			matched = append(matched, img)
		}
	}
	return matched, nil
}

// LoadTags returns the tag sets for every listed object, fetching through
// the tag cache. progress may be nil.
func (s *Store) LoadTags(ctx context.Context, progress tagcache.ProgressFunc) (map[string]map[string]string, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return s.tags.LoadAll(ctx, keys, progress)
}

// ReloadTags drops the tag cache and fetches everything again.
func (s *Store) ReloadTags(ctx context.Context, progress tagcache.ProgressFunc) (map[string]map[string]string, error) {
	s.tags.Invalidate()
	return s.LoadTags(ctx, progress)
}

// Upload validates and normalises an image payload, allocates a fresh id,
// and writes the object plus its tags to the blob store. A copy lands in
// the local cache when one is configured. A payload that cannot be decoded
// fails the operation with no partial state.
func (s *Store) Upload(ctx context.Context, data []byte, tags map[string]string) (*model.Image, error) {
	normalized, err := imageproc.Normalize(data)
	if err != nil {
		return nil, err
	}

	id := model.NewImageID(s.now())
	key := model.StorageKeyFor(s.prefix, id)

	if err := s.objects.Put(ctx, key, normalized); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := s.objects.PutTags(ctx, key, tags); err != nil {
			return nil, fmt.Errorf("uploaded %s but tagging failed: %w", key, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Store(key, normalized); err != nil {
			s.logger.Warn("local cache write failed", "key", key, "error", err)
		}
	}
	s.tags.Invalidate()

	img := &model.Image{StorageKey: key, SizeBytes: int64(len(normalized))}
	if tags != nil {
		img.Tags = tags
	} else {
		img.Tags = map[string]string{}
	}
	return img, nil
}

// UploadFromPath reads an image file and uploads it.
func (s *Store) UploadFromPath(ctx context.Context, path string, tags map[string]string) (*model.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return s.Upload(ctx, data, tags)
}

// SetTags replaces the object's tag set and invalidates the tag cache.
func (s *Store) SetTags(ctx context.Context, img *model.Image, tags map[string]string) error {
	if err := s.objects.PutTags(ctx, img.StorageKey, tags); err != nil {
		return err
	}
	s.tags.Invalidate()
	img.Tags = tags
	return nil
}

// Attach records the image on the entry. Idempotent: attaching an
// already-attached image returns (false, nil), not an error.
func (s *Store) Attach(ctx context.Context, img *model.Image, e *model.Entry) (bool, error) {
	if !e.AttachImage(img.StorageKey) {
		return false, nil
	}
	if err := s.entries.Update(ctx, e); err != nil {
		e.DetachImage(img.StorageKey)
		return false, fmt.Errorf("attach %s to %s: %w", img.ShortHash(), e.ID, err)
	}
	return true, nil
}

// Detach removes the image from the entry. Idempotent: detaching a
// non-attached image returns (false, nil).
func (s *Store) Detach(ctx context.Context, img *model.Image, e *model.Entry) (bool, error) {
	if !e.DetachImage(img.StorageKey) {
		return false, nil
	}
	if err := s.entries.Update(ctx, e); err != nil {
		e.AttachImage(img.StorageKey)
		return false, fmt.Errorf("detach %s from %s: %w", img.ShortHash(), e.ID, err)
	}
	return true, nil
}

// Delete removes the object, clears its local cache entry, and detaches it
// from every entry currently referencing it. The identifier is retired
// permanently. A detach that fails on one of several entries is logged and
// the deletion continues for the rest; there is no transaction spanning
// the blob store and the entry records.
func (s *Store) Delete(ctx context.Context, img *model.Image) error {
	if err := s.objects.Delete(ctx, img.StorageKey); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Remove(img.StorageKey)
	}
	s.tags.Invalidate()

	all, err := s.entries.List(ctx)
	if err != nil {
		s.logger.Error("object deleted but entries could not be listed for detach",
			"key", img.StorageKey, "error", err)
		return nil
	}
	for _, e := range all {
		if !e.DetachImage(img.StorageKey) {
			continue
		}
		if err := s.entries.Update(ctx, e); err != nil {
			s.logger.Error("detach after delete failed",
				"key", img.StorageKey, "entry", e.ID, "error", err)
		}
	}
	return nil
}

// PresignURL mints a short-lived display URL for the image.
func (s *Store) PresignURL(ctx context.Context, img *model.Image, ttl time.Duration) (string, error) {
	return s.objects.PresignGet(ctx, img.StorageKey, ttl)
}

// Download returns the image bytes, reading through the local cache when
// one is configured.
func (s *Store) Download(ctx context.Context, img *model.Image) ([]byte, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Retrieve(img.StorageKey); err == nil && ok {
			return data, nil
		}
	}
	data, err := s.objects.Get(ctx, img.StorageKey)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Store(img.StorageKey, data); err != nil {
			s.logger.Warn("local cache write failed", "key", img.StorageKey, "error", err)
		}
	}
	return data, nil
}

// CheckConsistency verifies that every storage key referenced by an entry
// exists in the current object listing, and returns warnings for dangling
// references. The check is one-way on purpose: an object no entry
// references is simply a detached image, which is a valid state. Warnings
// are also logged; nothing is auto-repaired.
func (s *Store) CheckConsistency(ctx context.Context) ([]Warning, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		existing[obj.Key] = struct{}{}
	}

	all, err := s.entries.List(ctx)
	if err != nil {
		return nil, err
	}
	var warnings []Warning
	for _, e := range all {
		for _, key := range e.SortedImageIDs() {
			if _, ok := existing[key]; ok {
				continue
			}
			s.logger.Error("entry references a missing image object",
				"entry", e.ID, "title", e.Title, "key", key)
			warnings = append(warnings, Warning{
				EntryID:    e.ID,
				EntryTitle: e.Title,
				StorageKey: key,
			})
		}
	}
	return warnings, nil
}

// ClearLocalCache deletes all locally cached bytes and returns the count
// removed. It never touches the blob store.
func (s *Store) ClearLocalCache() (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Clear()
}

// DuplicateGroups lists the groups of byte-identical objects, keyed by the
// blob store's content signature.
func (s *Store) DuplicateGroups(ctx context.Context) ([]dupes.Group, error) {
	objects, err := s.objects.List(ctx)
	if err != nil {
		return nil, err
	}
	return dupes.FindDuplicateGroups(objects), nil
}

// ApplyResolution deletes every object a resolution plan marked for
// deletion, detaching each from its entries. Callers are expected to have
// confirmed the plan with the operator first. Returns the number deleted;
// a failed delete is logged and the rest of the plan still runs.
func (s *Store) ApplyResolution(ctx context.Context, res dupes.Resolution) (int, error) {
	deleted := 0
	for _, key := range res.Delete {
		img := &model.Image{StorageKey: key}
		if err := s.Delete(ctx, img); err != nil {
			s.logger.Error("duplicate cleanup delete failed", "key", key, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
