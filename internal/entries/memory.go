package entries

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mediashelf/internal/model"
)

// Compile-time check that Memory implements Store.
var _ Store = (*Memory)(nil)

// Memory is an in-process Store used in tests. Entries are stored as deep
// copies so callers cannot mutate shared state behind the store's back.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*model.Entry
}

// NewMemory creates an empty in-memory entry store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*model.Entry)}
}

func (m *Memory) Create(ctx context.Context, e *model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; ok {
		return fmt.Errorf("entry %s already exists", e.ID)
	}
	m.entries[e.ID] = e.Clone()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e.Clone(), nil
}

func (m *Memory) List(ctx context.Context) ([]*model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*model.Entry, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Title < result[j].Title })
	return result, nil
}

func (m *Memory) Update(ctx context.Context, e *model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return ErrNotFound
	}
	m.entries[e.ID] = e.Clone()
	return nil
}
