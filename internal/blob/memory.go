package blob

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Compile-time check that Memory implements ObjectStore.
var _ ObjectStore = (*Memory)(nil)

// Memory is an in-process ObjectStore used in tests and offline runs.
// Content signatures are MD5 hex digests, mirroring what S3 reports as the
// ETag for simple uploads.
type Memory struct {
	prefix string

	mu      sync.RWMutex
	objects map[string]*memObject
}

type memObject struct {
	data []byte
	tags map[string]string
}

// NewMemory creates an empty in-memory store for the given prefix.
func NewMemory(prefix string) *Memory {
	return &Memory{
		prefix:  strings.TrimSuffix(prefix, "/"),
		objects: make(map[string]*memObject),
	}
}

func (m *Memory) CheckAccess(ctx context.Context) error {
	return ctx.Err()
}

func (m *Memory) List(ctx context.Context) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var objects []Object
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, m.prefix+"/") {
			continue
		}
		sum := md5.Sum(obj.data)
		objects = append(objects, Object{
			Key:       key,
			Size:      int64(len(obj.data)),
			Signature: hex.EncodeToString(sum[:]),
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, nil
}

func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = &memObject{data: stored, tags: map[string]string{}}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *Memory) GetTags(ctx context.Context, key string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	tags := make(map[string]string, len(obj.tags))
	for k, v := range obj.tags {
		tags[k] = v
	}
	return tags, nil
}

func (m *Memory) PutTags(ctx context.Context, key string, tags map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return ErrNotFound
	}
	obj.tags = make(map[string]string, len(tags))
	for k, v := range tags {
		obj.tags[k] = v
	}
	return nil
}

func (m *Memory) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory:///%s?expires=%d", key, expires), nil
}
