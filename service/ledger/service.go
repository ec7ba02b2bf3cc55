// Package ledger stores proposed topic edits until an operator approves or
// rejects them. The whole ledger is one persisted record, so every mutation
// is a single atomic store update.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/internal/idgen"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/tracing"
)

// RecordKey is the store key of the ledger record.
const RecordKey = "curator/ledger"

type entries map[string]*model.PendingChange

// Applied describes an approved change written to the catalog.
type Applied struct {
	ChangeID   string           `json:"changeId"`
	Ref        model.Ref        `json:"ref"`
	UpdateType model.UpdateType `json:"updateType"`
	AppliedAt  time.Time        `json:"appliedAt"`
}

// BatchResult aggregates an ApproveAll call.
type BatchResult struct {
	Applied  int     `json:"applied"`
	Errors   int     `json:"errors"`
	Failures []error `json:"-"`
}

// Service is the pending change ledger.
type Service struct {
	record  *dao.Record[entries]
	catalog catalog.Service
	newID   func() string
	logger  zerolog.Logger
	// approvals are serialized so one change is applied at most once
	mux sync.Mutex
}

// New creates a ledger over store, approved content is written to catalog.
func New(store dao.Service, catalog catalog.Service, options ...Option) *Service {
	ret := &Service{
		record:  dao.NewRecord[entries](store, RecordKey),
		catalog: catalog,
		newID:   idgen.New,
		logger:  zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Propose stores outcome as a pending change for topic and returns its id.
func (s *Service) Propose(ctx context.Context, topic *model.Topic, outcome *model.Outcome, origin model.Origin, runID string) (string, error) {
	if topic == nil || outcome == nil {
		return "", dao.ErrNilEntity
	}
	preview, stats, err := Preview(topic.Ref, topic.Content, outcome.SuggestedContent)
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", topic.Ref.String()).Msg("failed to build change preview")
	}
	change := &model.PendingChange{
		ID:        s.newID(),
		Ref:       topic.Ref,
		Title:     topic.Title,
		Outcome:   outcome.Clone(),
		Origin:    origin,
		RunID:     runID,
		CreatedAt: clock.Now(),
		Preview:   preview,
		Stats:     stats,
	}
	_, err = s.record.Mutate(ctx, func(value *entries) error {
		if *value == nil {
			*value = entries{}
		}
		if _, ok := (*value)[change.ID]; ok {
			return fmt.Errorf("duplicate change id %s", change.ID)
		}
		(*value)[change.ID] = change
		return nil
	})
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("change", change.ID).Str("topic", topic.Ref.String()).
		Str("updateType", string(outcome.UpdateType)).Msg("change proposed")
	return change.ID, nil
}

// Get returns a pending change or a types.NotFoundError.
func (s *Service) Get(ctx context.Context, id string) (*model.PendingChange, error) {
	value, err := s.record.Get(ctx)
	if err != nil {
		return nil, err
	}
	change, ok := (*value)[id]
	if !ok {
		return nil, types.NewNotFoundError("change", id)
	}
	return change, nil
}

// List returns pending changes matching all filters, oldest first.
func (s *Service) List(ctx context.Context, filters ...Filter) ([]*model.PendingChange, error) {
	value, err := s.record.Get(ctx)
	if err != nil {
		return nil, err
	}
	var ret []*model.PendingChange
	for _, change := range *value {
		if matches(change, filters) {
			ret = append(ret, change)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].CreatedAt.Equal(ret[j].CreatedAt) {
			return ret[i].ID < ret[j].ID
		}
		return ret[i].CreatedAt.Before(ret[j].CreatedAt)
	})
	return ret, nil
}

// Size returns the number of pending changes.
func (s *Service) Size(ctx context.Context) (int, error) {
	value, err := s.record.Get(ctx)
	if err != nil {
		return 0, err
	}
	return len(*value), nil
}

// Approve writes the suggested content of change id into the catalog and
// removes the change. A missing change or topic yields a types.NotFoundError
// and leaves the ledger unchanged.
func (s *Service) Approve(ctx context.Context, id string) (applied *Applied, err error) {
	ctx, span := tracing.StartSpan(ctx, "ledger.approve", tracing.KindInternal)
	span.WithAttributes(tracing.AttrChange.String(id))
	defer func() { tracing.EndSpan(span, err) }()

	s.mux.Lock()
	defer s.mux.Unlock()
	return s.approve(ctx, id)
}

func (s *Service) approve(ctx context.Context, id string) (*Applied, error) {
	change, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err = s.catalog.GetTopic(ctx, change.Ref); err != nil {
		return nil, err
	}
	record := model.UpdateRecord{
		ChangeID:   change.ID,
		UpdateType: change.Outcome.UpdateType,
		Summary:    change.Outcome.Summary,
		AppliedAt:  clock.Now(),
	}
	if err = s.catalog.UpdateTopic(ctx, change.Ref, change.Outcome.SuggestedContent, record); err != nil {
		return nil, err
	}
	if err = s.remove(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info().Str("change", id).Str("topic", change.Ref.String()).Msg("change approved")
	return &Applied{
		ChangeID:   id,
		Ref:        change.Ref,
		UpdateType: record.UpdateType,
		AppliedAt:  record.AppliedAt,
	}, nil
}

// Reject removes change id, it is a no-op when absent.
func (s *Service) Reject(ctx context.Context, id string) error {
	if err := s.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("change", id).Msg("change rejected")
	return nil
}

// ApproveAll approves a snapshot of the ledger. Individual failures are
// counted, and every snapshot entry is dropped afterwards whether it applied
// or not.
func (s *Service) ApproveAll(ctx context.Context) (*BatchResult, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	snapshot, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	result := &BatchResult{}
	ids := make([]string, 0, len(snapshot))
	for _, change := range snapshot {
		ids = append(ids, change.ID)
		if _, err := s.approve(ctx, change.ID); err != nil {
			result.Errors++
			result.Failures = append(result.Failures, err)
			s.logger.Warn().Err(err).Str("change", change.ID).Msg("failed to approve change")
			continue
		}
		result.Applied++
	}
	if err = s.remove(ctx, ids...); err != nil {
		return result, err
	}
	return result, nil
}

// RejectAll drops every pending change and returns how many were removed.
func (s *Service) RejectAll(ctx context.Context) (int, error) {
	removed := 0
	_, err := s.record.Mutate(ctx, func(value *entries) error {
		removed = len(*value)
		if removed == 0 {
			return dao.ErrSkip
		}
		*value = entries{}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Service) remove(ctx context.Context, ids ...string) error {
	_, err := s.record.Mutate(ctx, func(value *entries) error {
		removed := false
		for _, id := range ids {
			if _, ok := (*value)[id]; ok {
				delete(*value, id)
				removed = true
			}
		}
		if !removed {
			return dao.ErrSkip
		}
		return nil
	})
	if errors.Is(err, dao.ErrSkip) {
		return nil
	}
	return err
}
