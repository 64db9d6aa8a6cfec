// Package dupes finds byte-identical uploads by grouping listed objects on
// the blob store's content signature.
package dupes

import (
	"sort"

	"mediashelf/internal/blob"
	"mediashelf/internal/model"
)

// Group is a set of storage keys sharing one content signature.
type Group struct {
	Signature string
	Keys      []string
}

// Resolution is the cleanup plan for a set of duplicate groups: the
// earliest-uploaded object per group is kept, the rest are marked for
// deletion. Applying the plan is the caller's job, after confirmation.
type Resolution struct {
	Keep   []string
	Delete []string
}

// GroupBySignature groups objects by their content signature.
// The short display hash plays no part here.
func GroupBySignature(objects []blob.Object) map[string][]string {
	groups := make(map[string][]string)
	for _, obj := range objects {
		groups[obj.Signature] = append(groups[obj.Signature], obj.Key)
	}
	return groups
}

// FindDuplicateGroups returns the groups of two or more byte-identical
// objects, keys sorted by derived upload time, groups sorted by signature
// for stable output.
func FindDuplicateGroups(objects []blob.Object) []Group {
	var groups []Group
	for sig, keys := range GroupBySignature(objects) {
		if len(keys) < 2 {
			continue
		}
		sortByUploadTime(keys)
		groups = append(groups, Group{Signature: sig, Keys: keys})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Signature < groups[j].Signature })
	return groups
}

// Resolve builds the keep-earliest resolution plan for the given groups.
func Resolve(groups []Group) Resolution {
	var res Resolution
	for _, g := range groups {
		if len(g.Keys) == 0 {
			continue
		}
		res.Keep = append(res.Keep, g.Keys[0])
		res.Delete = append(res.Delete, g.Keys[1:]...)
	}
	return res
}

// sortByUploadTime orders storage keys by the timestamp embedded in their
// image id. Keys with unparseable ids sort last, then lexically.
func sortByUploadTime(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ti, erri := model.Timestamp(model.IDFromKey(keys[i]))
		tj, errj := model.Timestamp(model.IDFromKey(keys[j]))
		switch {
		case erri == nil && errj == nil:
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return keys[i] < keys[j]
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}
