package curator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/policy"
	"github.com/viant/curator/progress"
	"github.com/viant/curator/service/catalog"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/verifier"
)

// Option configures the service.
type Option func(s *Service)

// WithStore sets the record store, the default keeps records in memory.
func WithStore(store dao.Service) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCatalog sets the topic catalog.
func WithCatalog(catalog catalog.Service) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

// WithClient sets the verification client.
func WithClient(client verifier.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithVerifierTimeout bounds a single verification call.
func WithVerifierTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.verifierConfig.Timeout = timeout
	}
}

// WithPolicy sets the default proposal policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithNotifier sets the completion notifier.
func WithNotifier(n notifier.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithProgress registers an observer of run progress, called after every
// committed topic.
func WithProgress(observer func(progress.Report)) Option {
	return func(s *Service) {
		s.progress.OnChange(observer)
	}
}

// WithTickDelay sets the delay between ticks of a run.
func WithTickDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.runnerConfig.TickDelay = delay
	}
}

// WithTickRetryDelay sets the wait after a failed tick.
func WithTickRetryDelay(delay time.Duration) Option {
	return func(s *Service) {
		s.tickLoopConfig.RetryDelay = delay
	}
}

// WithTickPollInterval sets how often an idle runtime checks the store for a
// run started by another process.
func WithTickPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.tickLoopConfig.PollInterval = interval
	}
}

// WithSchedulePollInterval sets how often the weekly trigger reloads the
// persisted schedule.
func WithSchedulePollInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.weeklyConfig.PollInterval = interval
	}
}

// WithReviewConcurrency bounds parallel on-demand reviews.
func WithReviewConcurrency(n int) Option {
	return func(s *Service) {
		s.reviewConcurrency = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithCloser registers a release function called by Close.
func WithCloser(closer func(ctx context.Context) error) Option {
	return func(s *Service) {
		s.closers = append(s.closers, closer)
	}
}
