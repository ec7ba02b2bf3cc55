package trigger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/schedule"
)

// Starter starts the scheduled run.
type Starter func(ctx context.Context) error

// WeeklyConfig represents weekly trigger settings.
type WeeklyConfig struct {
	// PollInterval bounds how long the trigger trusts a loaded schedule;
	// changes made by another process are seen within one interval.
	PollInterval time.Duration
}

// DefaultWeeklyConfig returns the default weekly trigger configuration.
func DefaultWeeklyConfig() WeeklyConfig {
	return WeeklyConfig{PollInterval: time.Minute}
}

// Weekly fires Starter at the NextRun of the persisted schedule, then
// advances the schedule. A NextRun already in the past fires immediately.
type Weekly struct {
	schedule   *schedule.Service
	start      Starter
	config     WeeklyConfig
	reload     chan struct{}
	shutdownCh chan struct{}
	logger     zerolog.Logger
}

// NewWeekly creates a weekly trigger, it follows schedule changes.
func NewWeekly(schedules *schedule.Service, start Starter, config WeeklyConfig, logger zerolog.Logger) *Weekly {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultWeeklyConfig().PollInterval
	}
	ret := &Weekly{
		schedule:   schedules,
		start:      start,
		config:     config,
		reload:     make(chan struct{}, 1),
		shutdownCh: make(chan struct{}),
		logger:     logger,
	}
	return ret
}

// Reschedule makes the trigger reload the schedule.
func (w *Weekly) Reschedule() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

// Start waits for scheduled runs until ctx is done or Shutdown is called.
func (w *Weekly) Start(ctx context.Context) error {
	for {
		wait, due, retry := w.next(ctx)
		if !due || wait > w.config.PollInterval {
			wait, due, retry = w.config.PollInterval, true, true
		}
		timer := time.NewTimer(wait)
		fire := timer.C
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-w.shutdownCh:
			timer.Stop()
			return nil
		case <-w.reload:
			timer.Stop()
		case <-fire:
			if !retry {
				w.fire(ctx)
			}
		}
	}
}

// next returns the wait until the scheduled run; retry is set when the
// wait only delays the next reload.
func (w *Weekly) next(ctx context.Context) (wait time.Duration, due bool, retry bool) {
	config, err := w.schedule.Get(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load schedule")
		return time.Minute, true, true
	}
	if !config.Enabled || config.NextRun == nil {
		return 0, false, false
	}
	w.logger.Debug().Time("nextRun", *config.NextRun).Msg("weekly run scheduled")
	return config.NextRun.Sub(clock.Now()), true, false
}

// Shutdown stops the trigger.
func (w *Weekly) Shutdown() {
	close(w.shutdownCh)
}

func (w *Weekly) fire(ctx context.Context) {
	config, err := w.schedule.Get(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load schedule")
		return
	}
	if !config.Enabled || config.NextRun == nil || config.NextRun.After(clock.Now()) {
		w.logger.Debug().Bool("enabled", config.Enabled).Msg("schedule changed, run not due")
		return
	}
	err = w.start(ctx)
	switch {
	case types.IsConcurrency(err):
		w.logger.Warn().Err(err).Msg("scheduled run skipped")
	case err != nil:
		w.logger.Error().Err(err).Msg("scheduled run failed to start")
	}
	if _, err = w.schedule.MarkRun(ctx, clock.Now()); err != nil {
		w.logger.Error().Err(err).Msg("failed to advance schedule")
	}
}
