// Package runner drives a review run: a persisted FIFO of topics processed
// one tick at a time. The runner keeps no run state in memory, every tick
// reads and writes the queue record, so a run survives process restarts and
// any scheduling primitive can drive it.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/internal/idgen"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/progress"
	"github.com/viant/curator/service/catalog"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/history"
	"github.com/viant/curator/service/ledger"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/schedule"
	"github.com/viant/curator/service/verifier"
)

// RecordKey is the store key of the queue record.
const RecordKey = "curator/queue"

// Config represents runner configuration.
type Config struct {
	// TickDelay spaces verification calls of one run.
	TickDelay time.Duration
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{TickDelay: 2 * time.Second}
}

// TickScheduler arranges for Tick to be called after delay. A new request
// replaces a pending one.
type TickScheduler interface {
	Schedule(delay time.Duration)
}

// Service is the queue runner.
type Service struct {
	queue     *dao.Record[model.QueueState]
	catalog   catalog.Service
	verifier  *verifier.Service
	ledger    *ledger.Service
	history   *history.Service
	schedule  *schedule.Service
	notifier  notifier.Notifier
	scheduler TickScheduler
	progress  *progress.Tracker
	config    Config
	newID     func() string
	logger    zerolog.Logger

	// commitMux orders tick commits against Cancel and Complete
	commitMux sync.Mutex
}

// New creates a runner.
func New(store dao.Service, catalog catalog.Service, verifier *verifier.Service, ledger *ledger.Service, history *history.Service, options ...Option) *Service {
	ret := &Service{
		queue:    dao.NewRecord[model.QueueState](store, RecordKey),
		catalog:  catalog,
		verifier: verifier,
		ledger:   ledger,
		history:  history,
		config:   DefaultConfig(),
		newID:    idgen.New,
		logger:   zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// SetScheduler sets the primitive driving ticks.
func (s *Service) SetScheduler(scheduler TickScheduler) {
	s.scheduler = scheduler
}

// Status returns the persisted queue state.
func (s *Service) Status(ctx context.Context) (*model.QueueState, error) {
	return s.queue.Get(ctx)
}

// Start snapshots refs into a new running queue and schedules the first tick.
// It fails with a ConfigurationError when verification is not configured and
// with a ConcurrencyError while another run is active; neither writes state.
func (s *Service) Start(ctx context.Context, refs []model.Ref, trigger model.Trigger, scope string) (*model.QueueState, error) {
	if err := s.verifier.Check(); err != nil {
		return nil, err
	}
	now := clock.Now()
	runID := s.newID()
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if state.Running {
			return &types.ConcurrencyError{RunID: state.RunID, StartedAt: state.StartedAt}
		}
		*state = model.QueueState{
			RunID:     runID,
			Scope:     scope,
			Trigger:   trigger,
			Remaining: append([]model.Ref(nil), refs...),
			Running:   true,
			Total:     len(refs),
			StartedAt: &now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("run", runID).Str("scope", scope).Str("trigger", string(trigger)).
		Int("topics", len(refs)).Msg("review run started")
	s.scheduleTick(0)
	return state, nil
}

// Cancel stops the active run. A tick already waiting on verification
// discards its outcome when it commits.
func (s *Service) Cancel(ctx context.Context) (*model.QueueState, error) {
	s.commitMux.Lock()
	defer s.commitMux.Unlock()
	cancelled := false
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if !state.Running {
			return dao.ErrSkip
		}
		now := clock.Now()
		state.Running = false
		state.Remaining = nil
		state.CurrentTopic = nil
		state.CompletedAt = &now
		cancelled = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cancelled {
		s.logger.Info().Str("run", state.RunID).Int("processed", state.Processed).Msg("review run cancelled")
	}
	return state, nil
}

// Complete finishes the active run: it clears the queue, appends a history
// entry and sends the summary when notifications are enabled. It is a no-op
// when no run is active.
func (s *Service) Complete(ctx context.Context) (*model.QueueState, error) {
	s.commitMux.Lock()
	completed := false
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if !state.Running {
			return dao.ErrSkip
		}
		now := clock.Now()
		state.Running = false
		state.Remaining = nil
		state.CurrentTopic = nil
		state.CompletedAt = &now
		completed = true
		return nil
	})
	s.commitMux.Unlock()
	if err != nil || !completed {
		return state, err
	}

	entry := model.HistoryEntry{
		RunID:        state.RunID,
		Timestamp:    *state.CompletedAt,
		Scope:        state.Scope,
		Trigger:      state.Trigger,
		Reviewed:     state.Processed,
		ChangesFound: state.ChangesFound,
		Errors:       state.Errors,
	}
	if state.StartedAt != nil {
		entry.Duration = state.CompletedAt.Sub(*state.StartedAt)
	}
	if err = s.history.Append(ctx, entry); err != nil {
		s.logger.Error().Err(err).Str("run", state.RunID).Msg("failed to append run history")
	}
	s.logger.Info().Str("run", state.RunID).Int("reviewed", state.Processed).
		Int("changes", state.ChangesFound).Int("errors", state.Errors).Msg("review run completed")
	s.notify(ctx, state)
	return state, nil
}

// Resume re-queues a topic popped by a tick that never committed, for
// example because the process stopped, and schedules the next tick. It must
// only be called when no tick is in flight.
func (s *Service) Resume(ctx context.Context) (*model.QueueState, error) {
	s.commitMux.Lock()
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if !state.Running || state.CurrentTopic == nil {
			return dao.ErrSkip
		}
		state.Remaining = append([]model.Ref{*state.CurrentTopic}, state.Remaining...)
		state.CurrentTopic = nil
		return nil
	})
	s.commitMux.Unlock()
	if err != nil {
		return nil, err
	}
	if state.Running {
		s.logger.Info().Str("run", state.RunID).Int("remaining", len(state.Remaining)).Msg("review run resumed")
		s.scheduleTick(0)
	}
	return state, nil
}

func (s *Service) notify(ctx context.Context, state *model.QueueState) {
	if s.notifier == nil || s.schedule == nil {
		return
	}
	config, err := s.schedule.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load schedule for notification")
		return
	}
	address, ok := config.Recipient()
	if !ok {
		return
	}
	subject, body := notifier.Summary(state)
	if err = s.notifier.Send(ctx, address, subject, body); err != nil {
		s.logger.Warn().Err(err).Str("address", address).Msg("failed to send run summary")
	}
}

func (s *Service) scheduleTick(delay time.Duration) {
	if s.scheduler != nil {
		s.scheduler.Schedule(delay)
	}
}
