package localcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndRetrieve(t *testing.T) {
	c := New(t.TempDir())
	data := []byte("cached image bytes")
	key := "movies-series-images/2025-05-15T12:00:00+02:00.png"

	require.NoError(t, c.Store(key, data))

	got, ok, err := c.Retrieve(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, data, got)

	// The on-disk layout mirrors the storage key.
	path := filepath.Join(c.root, "movies-series-images", "2025-05-15T12:00:00+02:00.png")
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRetrieveMissing(t *testing.T) {
	c := New(t.TempDir())

	_, ok, err := c.Retrieve("movies-series-images/nope.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreOverwrites(t *testing.T) {
	c := New(t.TempDir())
	key := "p/img.png"

	require.NoError(t, c.Store(key, []byte("one")))
	require.NoError(t, c.Store(key, []byte("two")))

	got, ok, err := c.Retrieve(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("two"), got)
}

func TestRemove(t *testing.T) {
	c := New(t.TempDir())
	key := "p/img.png"

	require.NoError(t, c.Store(key, []byte("bye")))
	assert.True(t, c.Remove(key))
	assert.False(t, c.Remove(key), "second remove finds nothing")

	_, ok, err := c.Retrieve(key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Store("p/a.png", []byte("a")))
	require.NoError(t, c.Store("p/b.png", []byte("b")))
	require.NoError(t, c.Store("q/c.png", []byte("c")))

	removed, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	removed, err = c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestClearMissingRoot(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "never-created"))

	removed, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}
