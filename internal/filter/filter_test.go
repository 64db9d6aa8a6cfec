package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mediashelf/internal/model"
)

// newImg builds an image whose id is derived from a local time, so date
// filters behave the same in any test timezone.
func newImg(t time.Time, attached bool, tags map[string]string) *model.Image {
	id := model.NewImageID(t)
	img := &model.Image{
		StorageKey: model.StorageKeyFor("movies-series-images", id),
		Tags:       tags,
	}
	if attached {
		img.Entries = []*model.Entry{model.NewEntry("Dune", 2021)}
	}
	return img
}

func localTime(day int) time.Time {
	return time.Date(2025, 5, day, 12, 0, 0, 0, time.Local)
}

func TestParseKinds(t *testing.T) {
	tests := []struct {
		token string
		kind  Kind
	}{
		{"*", Wildcard},
		{"!*", Wildcard},
		{"attached", Attached},
		{"detached", Detached},
		{"#abc", HashPrefix},
		{"#ab12cd", HashPrefix},
		{"#ab", Unknown},    // too short
		{"#xyz12", Unknown}, // not hex
		{"15.05.2025", ExactDate},
		{"99.99.2025", Unknown}, // no such date
		{"what=avatar", TagMatch},
		{"gibberish", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		f := Parse(tt.token)
		assert.Equal(t, tt.kind, f.Kind, "token %q", tt.token)
	}
	assert.True(t, Parse("!attached").Negated)
	assert.False(t, Parse("attached").Negated)
}

func TestWildcard(t *testing.T) {
	img := newImg(localTime(15), false, nil)

	assert.True(t, Parse("*").Match(img))
	assert.False(t, Parse("!*").Match(img))
}

func TestAttached(t *testing.T) {
	attached := newImg(localTime(15), true, nil)
	detached := newImg(localTime(16), false, nil)

	assert.True(t, Parse("attached").Match(attached))
	assert.False(t, Parse("attached").Match(detached))

	// Negation flips the result exactly.
	assert.False(t, Parse("!attached").Match(attached))
	assert.True(t, Parse("!attached").Match(detached))

	assert.True(t, Parse("detached").Match(detached))
	assert.False(t, Parse("detached").Match(attached))
}

func TestHashPrefix(t *testing.T) {
	img := newImg(localTime(15), false, nil)
	hash := model.HashOf(img.ID())

	assert.True(t, Parse("#"+hash[:4]).Match(img))
	assert.True(t, Parse("#"+hash[:10]).Match(img), "prefixes longer than the short hash still match")
	assert.False(t, Parse("!#"+hash[:4]).Match(img))

	other := newImg(localTime(16), false, nil)
	assert.False(t, Parse("#"+hash[:4]).Match(other))
}

func TestExactDate(t *testing.T) {
	img := newImg(localTime(15), false, nil)

	assert.True(t, Parse("15.05.2025").Match(img))
	assert.False(t, Parse("16.05.2025").Match(img))
	assert.True(t, Parse("!16.05.2025").Match(img))
}

func TestTagMatch(t *testing.T) {
	img := newImg(localTime(15), false, map[string]string{"what": "avatar", "who": "paul"})

	assert.True(t, Parse("what=avatar").Match(img))
	// Substring matching on both sides.
	assert.True(t, Parse("wh=ava").Match(img))
	// Case-sensitive.
	assert.False(t, Parse("What=avatar").Match(img))
	assert.False(t, Parse("what=banner").Match(img))
	// Empty value matches any value of a matching key.
	assert.True(t, Parse("who=").Match(img))

	noTags := newImg(localTime(16), false, nil)
	assert.False(t, Parse("what=avatar").Match(noTags))
	assert.True(t, Parse("!what=avatar").Match(noTags))
}

func TestUnknownMatchesNothing(t *testing.T) {
	img := newImg(localTime(15), true, map[string]string{"what": "avatar"})

	assert.False(t, Parse("gibberish").Match(img))
	assert.True(t, Parse("!gibberish").Match(img))
}
