// Package localcache keeps an on-disk copy of image bytes, mirroring the
// blob store's key layout. It is purely an optimization: always safe to
// delete and rebuild, never consulted for object existence.
package localcache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Cache is a directory of cached image bytes keyed by storage key.
type Cache struct {
	root string
}

// New creates a cache rooted at root. The directory is created lazily on
// the first Store call.
func New(root string) *Cache {
	return &Cache{root: root}
}

// path maps a storage key to its location under the cache root.
func (c *Cache) path(key string) string {
	return filepath.Join(c.root, filepath.FromSlash(key))
}

// Store writes data for a storage key using atomic write (temp file + rename).
func (c *Cache) Store(key string, data []byte) error {
	dst := c.path(key)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Write to a temp file in the same directory for atomic rename.
	tmp, err := os.CreateTemp(dir, "cache-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up the temp file on any error path.
	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", dst, err)
	}

	// Rename succeeded; prevent deferred cleanup from removing the final file.
	tmpPath = ""

	return nil
}

// Retrieve returns the cached bytes for a storage key, and whether the key
// was present.
func (c *Cache) Retrieve(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", c.path(key), err)
	}
	return data, true, nil
}

// Remove deletes the cached bytes for a storage key.
// Returns true if a cached file was actually removed.
func (c *Cache) Remove(key string) bool {
	if err := os.Remove(c.path(key)); err != nil {
		return false
	}
	return true
}

// Clear removes every cached file under the root and returns the count
// removed. Directories are left in place.
func (c *Cache) Clear() (int, error) {
	removed := 0
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	return removed, nil
}
