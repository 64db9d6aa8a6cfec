// Package tagcache fetches per-object tag sets concurrently and keeps the
// last loaded snapshot in memory.
package tagcache

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the concurrent tag fetches in LoadAll.
const DefaultWorkers = 16

// FetchFunc retrieves the tag set for one storage key.
type FetchFunc func(ctx context.Context, key string) (map[string]string, error)

// ProgressFunc receives (done, total) as items of a batch complete.
// It may be called from multiple goroutines.
type ProgressFunc func(done, total int)

// Cache owns the in-memory tags snapshot. A snapshot maps storage key to
// tag set. Readers may call Snapshot while a reload is in flight; the map
// is swapped whole once a batch completes, so a half-loaded state is never
// observable.
type Cache struct {
	fetch   FetchFunc
	workers int
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot map[string]map[string]string
}

// New creates a cache that fetches tags via fetch with DefaultWorkers
// concurrency.
func New(fetch FetchFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{fetch: fetch, workers: DefaultWorkers, logger: logger}
}

// Snapshot returns the last successfully loaded snapshot, or nil if none
// has been loaded. The returned map must not be mutated.
func (c *Cache) Snapshot() map[string]map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Invalidate drops the snapshot so the next LoadAll refetches everything.
// Used after a tag mutation or an upload/delete.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// LoadAll returns the tag sets for the given keys. If a valid snapshot
// exists it is returned as-is; otherwise one fetch per key fans out across
// the worker pool and the assembled result replaces the snapshot.
//
// A failed fetch is logged and contributes an empty tag set; it never
// aborts sibling fetches. Cancellation is the one exception: the batch is
// abandoned, the previous snapshot stays intact, and the call is safe to
// retry.
func (c *Cache) LoadAll(ctx context.Context, keys []string, progress ProgressFunc) (map[string]map[string]string, error) {
	if snap := c.Snapshot(); snap != nil {
		return snap, nil
	}

	var (
		resMu  sync.Mutex
		result = make(map[string]map[string]string, len(keys))
		done   int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			tags, err := c.fetch(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Warn("loading tags failed", "key", key, "error", err)
				tags = map[string]string{}
			}
			resMu.Lock()
			result[key] = tags
			done++
			n := done
			resMu.Unlock()
			if progress != nil {
				progress(n, len(keys))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = result
	c.mu.Unlock()
	return result, nil
}
