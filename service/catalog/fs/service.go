// Package fs provides a topic catalog stored as YAML documents on any afs
// storage: <baseURL>/<category>/<key>.yaml.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
)

const topicExt = ".yaml"

type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.Mutex
}

// New creates a catalog rooted at baseURL.
func New(baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("catalog base URL cannot be empty")
	}
	return &Service{baseURL: url.Normalize(baseURL, file.Scheme), fs: afs.New()}, nil
}

func (s *Service) ListTopics(ctx context.Context, filter catalog.Filter) ([]model.Ref, error) {
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	var refs []model.Ref
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), topicExt) {
			continue
		}
		rel := strings.TrimPrefix(url.Path(object.URL()), url.Path(s.baseURL))
		rel = strings.TrimSuffix(strings.TrimPrefix(path.Clean("/"+rel), "/"), topicExt)
		ref, err := model.ParseRef(rel)
		if err != nil {
			continue
		}
		if filter.Match(ref) {
			refs = append(refs, ref)
		}
	}
	catalog.SortRefs(refs)
	return refs, nil
}

func (s *Service) GetTopic(ctx context.Context, ref model.Ref) (*model.Topic, error) {
	return s.load(ctx, ref)
}

func (s *Service) UpdateTopic(ctx context.Context, ref model.Ref, content string, record model.UpdateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, err := s.load(ctx, ref)
	if err != nil {
		return err
	}
	topic.Apply(content, record)
	return s.Save(ctx, topic)
}

// Save writes a topic document.
func (s *Service) Save(ctx context.Context, topic *model.Topic) error {
	data, err := yaml.Marshal(topic)
	if err != nil {
		return fmt.Errorf("failed to encode topic %s: %w", topic.Ref, err)
	}
	if err = s.fs.Upload(ctx, s.topicURL(topic.Ref), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save topic %s: %w", topic.Ref, err)
	}
	return nil
}

// Delete removes a topic document.
func (s *Service) Delete(ctx context.Context, ref model.Ref) error {
	return s.fs.Delete(ctx, s.topicURL(ref))
}

func (s *Service) load(ctx context.Context, ref model.Ref) (*model.Topic, error) {
	URL := s.topicURL(ref)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check topic %s: %w", ref, err)
	}
	if !exists {
		return nil, types.NewNotFoundError("topic", ref.String())
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read topic %s: %w", ref, err)
	}
	topic := &model.Topic{}
	if err = yaml.Unmarshal(data, topic); err != nil {
		return nil, fmt.Errorf("failed to decode topic %s: %w", ref, err)
	}
	topic.Ref = ref
	return topic, nil
}

func (s *Service) topicURL(ref model.Ref) string {
	return url.Join(s.baseURL, ref.Category, ref.Key+topicExt)
}

var _ catalog.Service = (*Service)(nil)
