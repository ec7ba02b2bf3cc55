package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/curator/service/dao"
)

const recordExt = ".json"

// FSStore implements dao.Service on top of any afs storage (local disk,
// mem://, cloud buckets). Each record is a JSON file named after its key.
type FSStore struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

// NewFSStore creates a filesystem record store rooted at baseURL.
func NewFSStore(ctx context.Context, baseURL string) (*FSStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory %s: %w", baseURL, err)
		}
	}
	return &FSStore{baseURL: baseURL, fs: fs}, nil
}

// Load returns a record by key.
func (s *FSStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, dao.ErrInvalidKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ctx, key)
}

func (s *FSStore) load(ctx context.Context, key string) ([]byte, error) {
	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check record %s: %w", key, err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", key, err)
	}
	return data, nil
}

// Save stores or overwrites a record.
func (s *FSStore) Save(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, key, data)
}

func (s *FSStore) save(ctx context.Context, key string, data []byte) error {
	URL := s.recordURL(key)
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

// Delete removes a record.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", key, err)
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// Keys lists record keys with the given prefix.
func (s *FSStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var keys []string
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), recordExt) {
			continue
		}
		key := s.keyOf(object.URL())
		if key == "" || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Update runs fn while holding the store write lock.
func (s *FSStore) Update(ctx context.Context, key string, fn dao.UpdateFunc) error {
	if key == "" {
		return dao.ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.load(ctx, key)
	exists := err == nil
	if err != nil && !errors.Is(err, dao.ErrNotFound) {
		return err
	}
	data, err := fn(current, exists)
	if err != nil {
		return skipped(err)
	}
	return s.save(ctx, key, data)
}

func (s *FSStore) recordURL(key string) string {
	return url.Join(s.baseURL, key+recordExt)
}

func (s *FSStore) keyOf(URL string) string {
	rel := strings.TrimPrefix(url.Path(URL), url.Path(s.baseURL))
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return strings.TrimSuffix(rel, recordExt)
}

var _ dao.Service = (*FSStore)(nil)
