package curator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/internal/logging"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/policy"
	"github.com/viant/curator/progress"
	"github.com/viant/curator/service/catalog"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/dao/store"
	"github.com/viant/curator/service/history"
	"github.com/viant/curator/service/ledger"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/runner"
	"github.com/viant/curator/service/schedule"
	"github.com/viant/curator/service/trigger"
	"github.com/viant/curator/service/verifier"
)

// Service is the operator control surface of the review engine.
type Service struct {
	store             dao.Service
	catalog           catalog.Service
	client            verifier.Client
	policy            *policy.Policy
	notifier          notifier.Notifier
	logger            zerolog.Logger
	verifierConfig    verifier.Config
	runnerConfig      runner.Config
	tickLoopConfig    trigger.TickLoopConfig
	weeklyConfig      trigger.WeeklyConfig
	reviewConcurrency int
	closers           []func(ctx context.Context) error
	progress          progress.Tracker

	verifier *verifier.Service
	ledger   *ledger.Service
	history  *history.Service
	schedule *schedule.Service
	runner   *runner.Service
	runtime  *Runtime
}

// New creates the service. A catalog is required; without a verification
// client the service starts but every run fails with a ConfigurationError.
func New(options ...Option) (*Service, error) {
	s := &Service{
		logger:            zerolog.Nop(),
		verifierConfig:    verifier.DefaultConfig(),
		runnerConfig:      runner.DefaultConfig(),
		tickLoopConfig:    trigger.DefaultTickLoopConfig(),
		weeklyConfig:      trigger.DefaultWeeklyConfig(),
		reviewConcurrency: 2,
	}
	for _, option := range options {
		option(s)
	}
	if s.catalog == nil {
		return nil, types.NewConfigurationError("topic catalog is not configured")
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.reviewConcurrency <= 0 {
		s.reviewConcurrency = 1
	}
	s.init()
	return s, nil
}

func (s *Service) init() {
	s.verifier = verifier.New(s.client,
		verifier.WithConfig(s.verifierConfig),
		verifier.WithPolicy(s.policy),
		verifier.WithLogger(logging.Component(s.logger, "verifier")))
	s.ledger = ledger.New(s.store, s.catalog, ledger.WithLogger(logging.Component(s.logger, "ledger")))
	s.history = history.New(s.store)
	s.schedule = schedule.New(s.store)
	runnerOptions := []runner.Option{
		runner.WithConfig(s.runnerConfig),
		runner.WithLogger(logging.Component(s.logger, "runner")),
		runner.WithProgress(&s.progress),
	}
	if s.notifier != nil {
		runnerOptions = append(runnerOptions, runner.WithNotifier(s.notifier, s.schedule))
	}
	s.runner = runner.New(s.store, s.catalog, s.verifier, s.ledger, s.history, runnerOptions...)
	s.runtime = newRuntime(s)
}

// Runtime returns the background drivers of runs.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Start snapshots the topics selected by scope into a new manual run.
func (s *Service) Start(ctx context.Context, scope string) (*model.QueueState, error) {
	return s.start(ctx, scope, model.TriggerManual)
}

// StartScheduled starts a run over the scope of the saved schedule. A
// disabled schedule returns a ConfigurationError.
func (s *Service) StartScheduled(ctx context.Context) (*model.QueueState, error) {
	config, err := s.schedule.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, types.NewConfigurationError("weekly schedule is disabled")
	}
	return s.start(ctx, config.Scope, model.TriggerScheduled)
}

func (s *Service) start(ctx context.Context, scope string, trigger model.Trigger) (*model.QueueState, error) {
	if err := s.verifier.Check(); err != nil {
		return nil, err
	}
	filter := catalog.ParseScope(scope)
	refs, err := s.catalog.ListTopics(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.runner.Start(ctx, refs, trigger, filter.String())
}

// Tick performs one unit of work of the active run.
func (s *Service) Tick(ctx context.Context) (*runner.TickResult, error) {
	return s.runner.Tick(ctx)
}

// Progress reports how far the current or last run has progressed.
func (s *Service) Progress(ctx context.Context) (progress.Report, error) {
	state, err := s.runner.Status(ctx)
	if err != nil {
		return progress.Report{}, err
	}
	return progress.Of(state, clock.Now()), nil
}

// Cancel stops the active run.
func (s *Service) Cancel(ctx context.Context) (*model.QueueState, error) {
	return s.runner.Cancel(ctx)
}

// Status returns the queue state of the current or last run.
func (s *Service) Status(ctx context.Context) (*model.QueueState, error) {
	return s.runner.Status(ctx)
}

// SaveSchedule validates and persists the weekly schedule; the weekly trigger
// follows the change.
func (s *Service) SaveSchedule(ctx context.Context, config model.ScheduleConfig) (*model.ScheduleConfig, error) {
	return s.schedule.Save(ctx, config)
}

// Schedule returns the weekly schedule.
func (s *Service) Schedule(ctx context.Context) (*model.ScheduleConfig, error) {
	return s.schedule.Get(ctx)
}

// Approve applies a pending change to the catalog.
func (s *Service) Approve(ctx context.Context, id string) (*ledger.Applied, error) {
	return s.ledger.Approve(ctx, id)
}

// Reject discards a pending change.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.ledger.Reject(ctx, id)
}

// ApproveAll applies every pending change and empties the ledger.
func (s *Service) ApproveAll(ctx context.Context) (*ledger.BatchResult, error) {
	return s.ledger.ApproveAll(ctx)
}

// RejectAll discards every pending change.
func (s *Service) RejectAll(ctx context.Context) (int, error) {
	return s.ledger.RejectAll(ctx)
}

// Pending lists pending changes, oldest first.
func (s *Service) Pending(ctx context.Context, filters ...ledger.Filter) ([]*model.PendingChange, error) {
	return s.ledger.List(ctx, filters...)
}

// Change returns one pending change.
func (s *Service) Change(ctx context.Context, id string) (*model.PendingChange, error) {
	return s.ledger.Get(ctx, id)
}

// History returns completed run summaries, oldest first.
func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	return s.history.List(ctx)
}

// Review is the result of an on-demand topic review.
type Review struct {
	Ref      model.Ref
	Outcome  *model.Outcome
	ChangeID string
	Err      error
}

// ReviewTopic verifies one topic synchronously and proposes a change when
// needed. The returned error is the review failure, if any.
func (s *Service) ReviewTopic(ctx context.Context, ref model.Ref) (*Review, error) {
	if err := s.verifier.Check(); err != nil {
		return nil, err
	}
	review := s.review(ctx, ref)
	return review, review.Err
}

// ReviewTopics verifies refs synchronously. Per-topic failures are reported
// in each Review; only a configuration problem fails the call.
func (s *Service) ReviewTopics(ctx context.Context, refs []model.Ref) ([]*Review, error) {
	if err := s.verifier.Check(); err != nil {
		return nil, err
	}
	reviews := make([]*Review, len(refs))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(s.reviewConcurrency)
	for i, ref := range refs {
		group.Go(func() error {
			reviews[i] = s.review(gctx, ref)
			return nil
		})
	}
	_ = group.Wait()
	return reviews, nil
}

func (s *Service) review(ctx context.Context, ref model.Ref) *Review {
	review := &Review{Ref: ref}
	topic, err := s.catalog.GetTopic(ctx, ref)
	if err != nil {
		review.Err = err
		return review
	}
	result := s.verifier.Verify(ctx, topic)
	if review.Outcome, review.Err = result.Outcome, result.Err; !result.Proposes() {
		return review
	}
	review.ChangeID, review.Err = s.ledger.Propose(ctx, topic, result.Outcome, model.OriginOnDemand, "")
	return review
}

// Close releases resources registered with WithCloser.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
