package verifier

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/policy"
)

// Option configures the orchestrator.
type Option func(*Service)

// WithConfig sets the verification config.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.config.Timeout = timeout
	}
}

// WithPolicy sets the default proposal policy.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
