// Package filter implements the one-token query language used to select
// subsets of images. A filter is exactly one token, optionally negated with
// a leading '!'; combining predicates is the caller's job.
package filter

import (
	"regexp"
	"strings"
	"time"

	"mediashelf/internal/model"
)

// Kind identifies which variant of the grammar a token parsed into.
type Kind int

const (
	// Unknown matches nothing.
	Unknown Kind = iota
	// Wildcard ("*") matches every image.
	Wildcard
	// Attached matches images referenced by at least one entry.
	Attached
	// Detached matches images referenced by no entry.
	Detached
	// HashPrefix ("#ab12") matches images whose short hash starts with
	// the given hex prefix (at least 3 hex chars).
	HashPrefix
	// ExactDate ("15.05.2025") matches images created on that calendar day.
	ExactDate
	// TagMatch ("key=value") matches images carrying a tag whose key
	// contains the given key and whose value contains the given value,
	// both as case-sensitive substrings.
	TagMatch
)

var dateRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)

// Filter is a parsed filter token. Matching is a pure function of the
// filter and the image; no I/O is involved.
type Filter struct {
	Kind    Kind
	Negated bool

	Prefix   string    // HashPrefix: hex chars after '#'
	Date     time.Time // ExactDate: midnight local on the requested day
	TagKey   string    // TagMatch
	TagValue string    // TagMatch
}

// Parse turns a filter token into a Filter. It never fails: tokens that fit
// no variant parse as Unknown, which matches nothing (or everything when
// negated).
func Parse(token string) Filter {
	f := Filter{Kind: Unknown}
	if strings.HasPrefix(token, "!") {
		f.Negated = true
		token = strings.TrimLeft(token, "!")
	}
	switch {
	case token == "*":
		f.Kind = Wildcard
	case token == "attached":
		f.Kind = Attached
	case token == "detached":
		f.Kind = Detached
	case strings.HasPrefix(token, "#"):
		prefix := token[1:]
		if len(prefix) >= 3 && isHex(prefix) {
			f.Kind = HashPrefix
			f.Prefix = prefix
		}
	case dateRe.MatchString(token):
		if d, err := time.ParseInLocation("02.01.2006", token, time.Local); err == nil {
			f.Kind = ExactDate
			f.Date = d
		}
	case strings.Contains(token, "="):
		key, value, _ := strings.Cut(token, "=")
		f.Kind = TagMatch
		f.TagKey = key
		f.TagValue = value
	}
	return f
}

// Match reports whether the image satisfies the filter. A leading '!' in the
// original token inverts the final result, not the individual conditions.
func (f Filter) Match(img *model.Image) bool {
	res := f.matchPositive(img)
	if f.Negated {
		return !res
	}
	return res
}

func (f Filter) matchPositive(img *model.Image) bool {
	switch f.Kind {
	case Wildcard:
		return true
	case Attached:
		return img.Attached()
	case Detached:
		return !img.Attached()
	case HashPrefix:
		return strings.HasPrefix(model.HashOf(img.ID()), f.Prefix)
	case ExactDate:
		t, err := img.Time()
		if err != nil {
			return false
		}
		y1, m1, d1 := t.Date()
		y2, m2, d2 := f.Date.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case TagMatch:
		for k, v := range img.Tags {
			if strings.Contains(k, f.TagKey) && strings.Contains(v, f.TagValue) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
