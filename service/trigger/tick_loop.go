package trigger

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/model"
	"github.com/viant/curator/service/runner"
)

// Ticker performs one unit of queue work and reports the queue state.
type Ticker interface {
	Tick(ctx context.Context) (*runner.TickResult, error)
	Status(ctx context.Context) (*model.QueueState, error)
}

// TickLoopConfig represents tick loop settings.
type TickLoopConfig struct {
	// RetryDelay is the wait before the next tick after a failed one.
	RetryDelay time.Duration
	// PollInterval is how often an idle loop checks the queue for a run
	// started by another process sharing the store.
	PollInterval time.Duration
}

// DefaultTickLoopConfig returns the default tick loop configuration.
func DefaultTickLoopConfig() TickLoopConfig {
	return TickLoopConfig{RetryDelay: 10 * time.Second, PollInterval: 5 * time.Second}
}

// TickLoop calls Tick whenever a scheduled delay elapses, and picks up runs
// it was not asked to schedule by polling the queue while idle. It
// implements runner.TickScheduler.
type TickLoop struct {
	ticker     Ticker
	config     TickLoopConfig
	requests   chan time.Duration
	shutdownCh chan struct{}
	logger     zerolog.Logger
}

// NewTickLoop creates a tick loop over ticker.
func NewTickLoop(ticker Ticker, config TickLoopConfig, logger zerolog.Logger) *TickLoop {
	defaults := DefaultTickLoopConfig()
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	return &TickLoop{
		ticker:     ticker,
		config:     config,
		requests:   make(chan time.Duration, 1),
		shutdownCh: make(chan struct{}),
		logger:     logger,
	}
}

// Schedule requests a tick after delay, replacing any pending request. It
// never blocks, so Tick may call it from the loop goroutine.
func (l *TickLoop) Schedule(delay time.Duration) {
	for {
		select {
		case l.requests <- delay:
			return
		default:
			select {
			case <-l.requests:
			default:
			}
		}
	}
}

// Start runs the loop until ctx is done or Shutdown is called.
func (l *TickLoop) Start(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	poll := time.NewTicker(l.config.PollInterval)
	defer poll.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.shutdownCh:
			return nil
		case delay := <-l.requests:
			timer.Stop()
			timer = time.NewTimer(delay)
			fire = timer.C
		case <-poll.C:
			if fire != nil || len(l.requests) > 0 || !l.pending(ctx) {
				continue
			}
			timer.Stop()
			timer = time.NewTimer(0)
			fire = timer.C
		case <-fire:
			fire = nil
			result, err := l.ticker.Tick(ctx)
			if err != nil {
				l.logger.Error().Err(err).Dur("retryIn", l.config.RetryDelay).Msg("tick failed")
				l.Schedule(l.config.RetryDelay)
				continue
			}
			if result.Completed {
				l.logger.Debug().Str("run", result.RunID).Msg("run drained")
			}
		}
	}
}

// pending reports whether the queue holds a run with work this process
// can take. A run whose last topic is in flight elsewhere is left to the
// process reviewing it.
func (l *TickLoop) pending(ctx context.Context) bool {
	state, err := l.ticker.Status(ctx)
	if err != nil {
		l.logger.Warn().Err(err).Msg("failed to poll queue")
		return false
	}
	if !state.Running || (state.CurrentTopic != nil && len(state.Remaining) == 0) {
		return false
	}
	l.logger.Debug().Str("run", state.RunID).Msg("picked up active run")
	return true
}

// Shutdown stops the loop.
func (l *TickLoop) Shutdown() {
	close(l.shutdownCh)
}

var _ runner.TickScheduler = (*TickLoop)(nil)
