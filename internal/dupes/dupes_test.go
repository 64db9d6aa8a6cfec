package dupes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediashelf/internal/blob"
	"mediashelf/internal/model"
)

func objAt(day int, signature string) blob.Object {
	id := model.NewImageID(time.Date(2025, 5, day, 12, 0, 0, 0, time.UTC))
	return blob.Object{
		Key:       model.StorageKeyFor("movies-series-images", id),
		Size:      100,
		Signature: signature,
	}
}

func TestGroupBySignature(t *testing.T) {
	objects := []blob.Object{objAt(1, "aaa"), objAt(2, "bbb"), objAt(3, "aaa")}

	groups := GroupBySignature(objects)
	assert.Len(t, groups, 2)
	assert.Len(t, groups["aaa"], 2)
	assert.Len(t, groups["bbb"], 1)
}

func TestFindDuplicateGroups(t *testing.T) {
	// Two objects share a signature, one is unique.
	a := objAt(2, "aaa")
	b := objAt(1, "aaa")
	c := objAt(3, "bbb")

	groups := FindDuplicateGroups([]blob.Object{a, b, c})
	require.Len(t, groups, 1, "only groups of two or more are duplicates")
	require.Len(t, groups[0].Keys, 2)

	// Keys are ordered by derived upload time, earliest first.
	assert.Equal(t, b.Key, groups[0].Keys[0])
	assert.Equal(t, a.Key, groups[0].Keys[1])
}

func TestFindDuplicateGroupsNone(t *testing.T) {
	groups := FindDuplicateGroups([]blob.Object{objAt(1, "aaa"), objAt(2, "bbb")})
	assert.Empty(t, groups)
}

func TestResolveKeepsEarliest(t *testing.T) {
	early := objAt(1, "aaa")
	mid := objAt(2, "aaa")
	late := objAt(3, "aaa")

	groups := FindDuplicateGroups([]blob.Object{late, early, mid})
	res := Resolve(groups)

	assert.Equal(t, []string{early.Key}, res.Keep)
	assert.ElementsMatch(t, []string{mid.Key, late.Key}, res.Delete)
}

func TestResolveMultipleGroups(t *testing.T) {
	groups := FindDuplicateGroups([]blob.Object{
		objAt(1, "aaa"), objAt(2, "aaa"),
		objAt(3, "bbb"), objAt(4, "bbb"), objAt(5, "bbb"),
	})
	res := Resolve(groups)

	assert.Len(t, res.Keep, 2)
	assert.Len(t, res.Delete, 3)
}
