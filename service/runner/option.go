package runner

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/progress"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/schedule"
)

// Option configures the runner.
type Option func(*Service)

// WithConfig sets the runner config.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTickDelay sets the delay between ticks.
func WithTickDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.config.TickDelay = delay
	}
}

// WithScheduler sets the primitive driving ticks.
func WithScheduler(scheduler TickScheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithNotifier sends run summaries through n to the schedule recipient.
func WithNotifier(n notifier.Notifier, schedule *schedule.Service) Option {
	return func(s *Service) {
		s.notifier = n
		s.schedule = schedule
	}
}

// WithProgress reports run progress to tracker after every committed topic.
func WithProgress(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the run id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}
