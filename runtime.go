package curator

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/viant/curator/internal/logging"
	"github.com/viant/curator/model"
	"github.com/viant/curator/service/trigger"
)

// Runtime runs the in-process scheduling primitives: the tick loop driving
// the active run and the weekly trigger.
type Runtime struct {
	service  *Service
	tickLoop *trigger.TickLoop
	weekly   *trigger.Weekly
	logger   zerolog.Logger

	mux    sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func newRuntime(s *Service) *Runtime {
	ret := &Runtime{service: s, logger: logging.Component(s.logger, "runtime")}
	ret.tickLoop = trigger.NewTickLoop(s.runner, s.tickLoopConfig, logging.Component(s.logger, "tick-loop"))
	ret.weekly = trigger.NewWeekly(s.schedule, func(ctx context.Context) error {
		_, err := s.StartScheduled(ctx)
		return err
	}, s.weeklyConfig, logging.Component(s.logger, "weekly"))
	s.runner.SetScheduler(ret.tickLoop)
	s.schedule.OnChange(func(model.ScheduleConfig) { ret.weekly.Reschedule() })
	return ret
}

// Start resumes an interrupted run and launches the drivers. It returns once
// they are running.
func (r *Runtime) Start(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.group != nil {
		return errors.New("runtime already started")
	}
	if _, err := r.service.runner.Resume(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return r.tickLoop.Start(ctx) })
	group.Go(func() error { return r.weekly.Start(ctx) })
	r.cancel = cancel
	r.group = group
	r.logger.Info().Msg("runtime started")
	return nil
}

// Wait blocks until the drivers stop.
func (r *Runtime) Wait() error {
	r.mux.Lock()
	group := r.group
	r.mux.Unlock()
	if group == nil {
		return nil
	}
	return group.Wait()
}

// Shutdown stops the drivers and waits for them until ctx is done.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mux.Lock()
	cancel, group := r.cancel, r.group
	r.cancel, r.group = nil, nil
	r.mux.Unlock()
	if group == nil {
		return nil
	}
	cancel()
	done := make(chan error, 1)
	go func() { done <- group.Wait() }()
	select {
	case err := <-done:
		r.logger.Info().Msg("runtime stopped")
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
