// Package memory provides an in-memory topic catalog.
package memory

import (
	"context"
	"sync"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
)

type Service struct {
	mu     sync.RWMutex
	topics map[model.Ref]*model.Topic
}

// New creates a catalog seeded with topics.
func New(topics ...*model.Topic) *Service {
	ret := &Service{topics: make(map[model.Ref]*model.Topic)}
	for _, topic := range topics {
		ret.Put(topic)
	}
	return ret
}

// Put adds or replaces a topic.
func (s *Service) Put(topic *model.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic.Ref] = copyTopic(topic)
}

// Remove deletes a topic.
func (s *Service) Remove(ref model.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.topics, ref)
}

func (s *Service) ListTopics(_ context.Context, filter catalog.Filter) ([]model.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var refs []model.Ref
	for ref := range s.topics {
		if filter.Match(ref) {
			refs = append(refs, ref)
		}
	}
	catalog.SortRefs(refs)
	return refs, nil
}

func (s *Service) GetTopic(_ context.Context, ref model.Ref) (*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topic, ok := s.topics[ref]
	if !ok {
		return nil, types.NewNotFoundError("topic", ref.String())
	}
	return copyTopic(topic), nil
}

func (s *Service) UpdateTopic(_ context.Context, ref model.Ref, content string, record model.UpdateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	topic, ok := s.topics[ref]
	if !ok {
		return types.NewNotFoundError("topic", ref.String())
	}
	topic.Apply(content, record)
	return nil
}

func copyTopic(topic *model.Topic) *model.Topic {
	ret := *topic
	ret.References = append([]model.Reference(nil), topic.References...)
	ret.UpdateHistory = append([]model.UpdateRecord(nil), topic.UpdateHistory...)
	ret.Hints.Focus = append([]string(nil), topic.Hints.Focus...)
	ret.Hints.Sources = append([]string(nil), topic.Hints.Sources...)
	if topic.LastVerified != nil {
		at := *topic.LastVerified
		ret.LastVerified = &at
	}
	return &ret
}

var _ catalog.Service = (*Service)(nil)
