package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/viant/curator/service/dao"
)

// MemoryStore is an in-memory implementation of dao.Service. Values are
// copied on the way in and out so callers never share buffers with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Load returns a record by key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, dao.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return clone(data), nil
}

// Save stores or overwrites a record.
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = clone(data)
	return nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Keys returns stored keys with the given prefix.
func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Update runs fn under the store lock.
func (s *MemoryStore) Update(_ context.Context, key string, fn dao.UpdateFunc) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, exists := s.records[key]
	data, err := fn(clone(current), exists)
	if err != nil {
		return skipped(err)
	}
	s.records[key] = clone(data)
	return nil
}

func clone(data []byte) []byte {
	if data == nil {
		return nil
	}
	return append([]byte(nil), data...)
}

// skipped maps dao.ErrSkip to a successful no-op.
func skipped(err error) error {
	if errors.Is(err, dao.ErrSkip) {
		return nil
	}
	return err
}

var _ dao.Service = (*MemoryStore)(nil)
