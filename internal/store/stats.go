package store

import "context"

// Stats summarises the current state of the image store.
type Stats struct {
	Objects         int   `json:"objects"`
	TotalSizeBytes  int64 `json:"total_size_bytes"`
	Attached        int   `json:"attached"`
	Detached        int   `json:"detached"`
	DuplicateGroups int   `json:"duplicate_groups"`
}

// Stats computes object, size, attachment and duplicate counts in one
// listing pass plus the entry join.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats

	images, err := s.List(ctx, "*", nil)
	if err != nil {
		return st, err
	}
	st.Objects = len(images)
	for _, img := range images {
		st.TotalSizeBytes += img.SizeBytes
		if img.Attached() {
			st.Attached++
		} else {
			st.Detached++
		}
	}

	groups, err := s.DuplicateGroups(ctx)
	if err != nil {
		return st, err
	}
	st.DuplicateGroups = len(groups)
	return st, nil
}
