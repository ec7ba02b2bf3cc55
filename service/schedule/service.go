// Package schedule computes and persists the weekly review schedule.
package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/dao"
)

// RecordKey is the store key of the schedule record.
const RecordKey = "curator/schedule"

// Listener is notified with the saved config after every change.
type Listener func(config model.ScheduleConfig)

type Service struct {
	record    *dao.Record[model.ScheduleConfig]
	mu        sync.RWMutex
	listeners []Listener
}

// New creates a schedule service over store.
func New(store dao.Service) *Service {
	return &Service{record: dao.NewRecord[model.ScheduleConfig](store, RecordKey)}
}

// Get returns the persisted config, zero value when never saved.
func (s *Service) Get(ctx context.Context) (*model.ScheduleConfig, error) {
	return s.record.Get(ctx)
}

// OnChange registers a listener called after Save and MarkRun.
func (s *Service) OnChange(listener Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Save validates and persists config with a recomputed NextRun. LastRun is
// kept from the stored config when config leaves it empty.
func (s *Service) Save(ctx context.Context, config model.ScheduleConfig) (*model.ScheduleConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, types.NewConfigurationError("invalid schedule: %v", err)
	}
	saved, err := s.record.Mutate(ctx, func(value *model.ScheduleConfig) error {
		lastRun := value.LastRun
		*value = config
		if value.LastRun == nil {
			value.LastRun = lastRun
		}
		value.NextRun = nextRun(value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(*saved)
	return saved, nil
}

// MarkRun records a scheduled run at and advances NextRun.
func (s *Service) MarkRun(ctx context.Context, at time.Time) (*model.ScheduleConfig, error) {
	saved, err := s.record.Mutate(ctx, func(value *model.ScheduleConfig) error {
		value.LastRun = &at
		value.NextRun = nextRun(value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(*saved)
	return saved, nil
}

func (s *Service) notify(config model.ScheduleConfig) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, listener := range listeners {
		listener(config)
	}
}

func nextRun(config *model.ScheduleConfig) *time.Time {
	if !config.Enabled {
		return nil
	}
	next := NextRun(clock.Now(), config.DayOfWeek, config.Hour, config.Minute)
	return &next
}
