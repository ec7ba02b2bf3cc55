package runner

import (
	"context"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/model"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/verifier"
	"github.com/viant/curator/tracing"
)

// TickResult describes one tick.
type TickResult struct {
	RunID string
	Ref   model.Ref
	// Idle is set when no run was active.
	Idle bool
	// Discarded is set when the run was cancelled or replaced while the topic
	// was being verified.
	Discarded bool
	// Completed is set when the tick drained the queue and finished the run.
	Completed bool
	// Waiting is set when the queue is drained but its last topic is still
	// being reviewed by another tick, which finishes the run on commit.
	Waiting  bool
	Proposed bool
	ChangeID string
	// Err is the per-topic failure recorded in the run error log.
	Err   error
	State *model.QueueState
}

// Tick processes the next topic of the active run: it pops the topic,
// verifies it with one external call and commits the result. Per-topic
// failures are recorded in the run state, not returned.
func (s *Service) Tick(ctx context.Context) (result *TickResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "runner.tick", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()

	var ref model.Ref
	popped := false
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if !state.Running {
			return dao.ErrSkip
		}
		if ref, popped = state.Pop(); !popped {
			return dao.ErrSkip
		}
		state.CurrentTopic = &ref
		return nil
	})
	if err != nil {
		return nil, err
	}
	result = &TickResult{RunID: state.RunID, State: state}
	if !state.Running {
		result.Idle = true
		return result, nil
	}
	if !popped {
		if state.CurrentTopic != nil {
			result.Waiting = true
			return result, nil
		}
		return s.finish(ctx, result)
	}
	result.Ref = ref
	span.WithRun(state.RunID).WithTopic(ref)

	topic, verification := s.review(ctx, ref)
	if err = s.commit(ctx, result, topic, verification); err != nil {
		return nil, err
	}
	if result.Discarded {
		return result, nil
	}
	s.progress.Update(result.State, clock.Now())
	if len(result.State.Remaining) == 0 {
		return s.finish(ctx, result)
	}
	s.scheduleTick(s.config.TickDelay)
	return result, nil
}

func (s *Service) review(ctx context.Context, ref model.Ref) (*model.Topic, *verifier.Result) {
	topic, err := s.catalog.GetTopic(ctx, ref)
	if err != nil {
		return nil, &verifier.Result{Ref: ref, Err: err}
	}
	return topic, s.verifier.Verify(ctx, topic)
}

// commit records the verification under the commit lock. The run must still
// be the active one right before the ledger write, otherwise the outcome is
// discarded. A run cancelled by another process between that check and the
// counter update has its proposal withdrawn from the ledger.
func (s *Service) commit(ctx context.Context, result *TickResult, topic *model.Topic, verification *verifier.Result) error {
	s.commitMux.Lock()
	defer s.commitMux.Unlock()

	current, err := s.queue.Get(ctx)
	if err != nil {
		return err
	}
	if !current.Running || current.RunID != result.RunID {
		result.Discarded = true
		result.State = current
		s.logger.Info().Str("run", result.RunID).Str("topic", result.Ref.String()).Msg("discarding outcome of inactive run")
		return nil
	}

	itemErr := verification.Err
	if verification.Proposes() {
		result.ChangeID, itemErr = s.ledger.Propose(ctx, topic, verification.Outcome, model.OriginRun, result.RunID)
		result.Proposed = itemErr == nil
	}
	result.Err = itemErr

	counted := false
	state, err := s.queue.Mutate(ctx, func(state *model.QueueState) error {
		if !state.Running || state.RunID != result.RunID {
			return dao.ErrSkip
		}
		counted = true
		state.Processed++
		state.CurrentTopic = nil
		if result.Proposed {
			state.ChangesFound++
		}
		if itemErr != nil {
			state.RecordError(result.Ref, itemErr, clock.Now())
		}
		return nil
	})
	if err != nil {
		return err
	}
	result.State = state
	if !counted {
		return s.withdraw(ctx, result)
	}
	event := s.logger.Debug()
	if itemErr != nil {
		event = s.logger.Warn().Err(itemErr)
	}
	event.Str("run", result.RunID).Str("topic", result.Ref.String()).Bool("proposed", result.Proposed).
		Int("processed", state.Processed).Int("total", state.Total).Msg("topic reviewed")
	return nil
}

func (s *Service) withdraw(ctx context.Context, result *TickResult) error {
	result.Discarded = true
	s.logger.Info().Str("run", result.RunID).Str("topic", result.Ref.String()).Msg("run ended during commit, discarding outcome")
	if !result.Proposed {
		return nil
	}
	if err := s.ledger.Reject(ctx, result.ChangeID); err != nil {
		return err
	}
	result.Proposed = false
	result.ChangeID = ""
	return nil
}

func (s *Service) finish(ctx context.Context, result *TickResult) (*TickResult, error) {
	state, err := s.Complete(ctx)
	if err != nil {
		return nil, err
	}
	result.Completed = true
	result.State = state
	return result, nil
}
