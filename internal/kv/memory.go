package kv

import (
	"context"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

// memoryStore implements Store in process memory. Entries never expire.
type memoryStore struct {
	c *cache.Cache
}

// NewMemoryStore creates an in-memory key-value store, used for tests and the memory backend.
func NewMemoryStore() Store {
	return &memoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(v.([]byte)), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.c.Set(key, cloneBytes(value), cache.NoExpiration)
	return nil
}

func (s *memoryStore) SetIfMissing(_ context.Context, key string, value []byte) (bool, error) {
	if err := s.c.Add(key, cloneBytes(value), cache.NoExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

func (s *memoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range s.c.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
