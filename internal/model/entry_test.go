package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttachDetachIdempotent(t *testing.T) {
	e := NewEntry("Dune", 2021)
	key := "movies-series-images/2025-05-15T20:01:02+02:00.png"

	assert.True(t, e.AttachImage(key))
	assert.False(t, e.AttachImage(key), "second attach must report no change")
	assert.True(t, e.HasImage(key))
	assert.Len(t, e.ImageIDs, 1)

	assert.True(t, e.DetachImage(key))
	assert.False(t, e.DetachImage(key), "second detach must report no change")
	assert.False(t, e.HasImage(key))
}

func TestSortedImageIDs(t *testing.T) {
	e := NewEntry("Dune", 2021)
	e.AttachImage("p/b.png")
	e.AttachImage("p/a.png")

	assert.Equal(t, []string{"p/a.png", "p/b.png"}, e.SortedImageIDs())
}

func TestClone(t *testing.T) {
	e := NewEntry("Dune", 2021)
	e.AttachImage("p/a.png")

	c := e.Clone()
	c.AttachImage("p/b.png")
	c.Title = "Dune: Part Two"

	assert.Len(t, e.ImageIDs, 1, "clone mutation must not leak back")
	assert.Equal(t, "Dune", e.Title)
	assert.Equal(t, e.ID, c.ID)
}
