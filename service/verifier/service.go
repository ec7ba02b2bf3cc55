// Package verifier turns one catalog topic into a verification outcome. The
// orchestrator never fails: transport errors, timeouts and malformed
// responses come back as a tagged Result so callers handle every per-topic
// failure the same way.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/policy"
	"github.com/viant/curator/tracing"
)

// Config represents verification settings.
type Config struct {
	// Timeout bounds a single client call.
	Timeout time.Duration
}

// DefaultConfig returns the default verification configuration.
func DefaultConfig() Config {
	return Config{Timeout: 90 * time.Second}
}

// Result is the outcome of one verification, exactly one of Outcome and Err
// is set.
type Result struct {
	Ref      model.Ref
	Outcome  *model.Outcome
	Err      error
	Duration time.Duration
}

// OK reports whether the verification produced an outcome.
func (r *Result) OK() bool { return r.Err == nil && r.Outcome != nil }

// Proposes reports whether the outcome should become a pending change.
func (r *Result) Proposes() bool { return r.OK() && r.Outcome.NeedsUpdate }

// Service orchestrates a single topic verification.
type Service struct {
	client Client
	config Config
	policy *policy.Policy
	logger zerolog.Logger
}

// New creates a verification orchestrator.
func New(client Client, options ...Option) *Service {
	ret := &Service{client: client, config: DefaultConfig(), logger: zerolog.Nop()}
	for _, option := range options {
		option(ret)
	}
	if ret.config.Timeout <= 0 {
		ret.config.Timeout = DefaultConfig().Timeout
	}
	return ret
}

// Check returns a ConfigurationError when no client is configured.
func (s *Service) Check() error {
	if s == nil || s.client == nil {
		return types.NewConfigurationError("verification client is not configured")
	}
	if checker, ok := s.client.(interface{ Check() error }); ok {
		return checker.Check()
	}
	return nil
}

type reply struct {
	response *Response
	err      error
}

// Verify builds a request from topic, calls the client with a bounded timeout
// and parses the response.
func (s *Service) Verify(ctx context.Context, topic *model.Topic) *Result {
	started := clock.Now()
	result := &Result{Ref: topic.Ref}
	ctx, span := tracing.StartSpan(ctx, "verifier.verify", tracing.KindClient)
	span.WithTopic(topic.Ref)
	defer func() {
		result.Duration = clock.Since(started)
		tracing.EndSpan(span, result.Err)
	}()

	if err := s.Check(); err != nil {
		result.Err = err
		return result
	}
	response, err := s.call(ctx, NewRequest(topic))
	if err != nil {
		result.Err = err
		s.logger.Warn().Err(err).Str("topic", topic.Ref.String()).Msg("verification failed")
		return result
	}
	outcome, err := Parse(response.Text)
	if err != nil {
		result.Err = err
		s.logger.Warn().Err(err).Str("topic", topic.Ref.String()).Msg("unparsable verification response")
		return result
	}
	active := s.policy
	if override := policy.FromContext(ctx); override != nil {
		active = override
	}
	result.Outcome = active.Apply(outcome)
	s.logger.Debug().Str("topic", topic.Ref.String()).
		Bool("needsUpdate", result.Outcome.NeedsUpdate).
		Str("updateType", string(result.Outcome.UpdateType)).
		Msg("topic verified")
	return result
}

// call runs the client in its own goroutine so a client that ignores its
// context still cannot hold the caller past the timeout.
func (s *Service) call(ctx context.Context, request *Request) (*Response, error) {
	op := "review " + request.Ref.String()
	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("client panic: %v", r)}
			}
		}()
		response, err := s.client.Review(callCtx, request)
		done <- reply{response: response, err: err}
	}()

	select {
	case rep := <-done:
		switch {
		case rep.err != nil:
			var transport *types.TransportError
			if types.IsConfiguration(rep.err) || errors.As(rep.err, &transport) {
				return nil, rep.err
			}
			return nil, types.NewTransportError(op, rep.err)
		case rep.response == nil:
			return nil, types.NewTransportError(op, errors.New("empty response"))
		}
		return rep.response, nil
	case <-callCtx.Done():
		return nil, types.NewTransportError(op, callCtx.Err())
	}
}
