package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
	cmemory "github.com/viant/curator/service/catalog/memory"
	"github.com/viant/curator/service/dao"
	"github.com/viant/curator/service/dao/store"
	"github.com/viant/curator/service/history"
	"github.com/viant/curator/service/ledger"
	"github.com/viant/curator/service/notifier"
	"github.com/viant/curator/service/schedule"
	"github.com/viant/curator/service/verifier"
)

const (
	current = `{"needsUpdate": false, "confidence": "high"}`
	stale   = `{"needsUpdate": true, "updateType": "minor", "confidence": "high", "suggestedContent": "fresh"}`
)

type recordingScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingScheduler) Schedule(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, delay)
}

type fixture struct {
	store     dao.Service
	catalog   *cmemory.Service
	ledger    *ledger.Service
	history   *history.Service
	schedule  *schedule.Service
	scheduler *recordingScheduler
	runner    *Service
}

func newFixture(client verifier.Client, keys ...string) *fixture {
	ret := &fixture{store: store.NewMemoryStore(), catalog: cmemory.New(), scheduler: &recordingScheduler{}}
	for _, key := range keys {
		ret.catalog.Put(&model.Topic{Ref: model.Ref{Category: "go", Key: key}, Title: key, Content: "content of " + key})
	}
	ret.ledger = ledger.New(ret.store, ret.catalog)
	ret.history = history.New(ret.store)
	ret.schedule = schedule.New(ret.store)
	ret.runner = New(ret.store, ret.catalog, verifier.New(client, verifier.WithTimeout(time.Second)), ret.ledger, ret.history,
		WithScheduler(ret.scheduler), WithTickDelay(time.Millisecond))
	return ret
}

func (f *fixture) refs(t *testing.T) []model.Ref {
	refs, err := f.catalog.ListTopics(context.Background(), catalog.Filter{})
	require.NoError(t, err)
	return refs
}

// byKey answers stale for the given keys and current otherwise.
func byKey(staleKeys ...string) verifier.ClientFunc {
	return func(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
		for _, key := range staleKeys {
			if request.Ref.Key == key {
				return &verifier.Response{Text: stale}, nil
			}
		}
		return &verifier.Response{Text: current}, nil
	}
}

func drain(t *testing.T, srv *Service) []*TickResult {
	var results []*TickResult
	for i := 0; i < 100; i++ {
		result, err := srv.Tick(context.Background())
		require.NoError(t, err)
		results = append(results, result)
		if result.Completed || result.Idle {
			return results
		}
	}
	t.Fatal("queue did not drain")
	return nil
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()
	f := newFixture(byKey(), "a", "b")
	state, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	require.NoError(t, err)
	assert.True(t, state.Running)
	assert.Equal(t, 2, state.Total)
	assert.Equal(t, []time.Duration{0}, f.scheduler.delays)

	_, err = f.runner.Start(ctx, f.refs(t)[:1], model.TriggerScheduled, "go")
	require.Error(t, err)
	assert.True(t, types.IsConcurrency(err), err)
	var concurrency *types.ConcurrencyError
	require.True(t, errors.As(err, &concurrency))
	assert.Equal(t, state.RunID, concurrency.RunID)

	after, err := f.runner.Status(ctx)
	require.NoError(t, err)
	assert.True(t, after.Running)
	assert.Equal(t, state.RunID, after.RunID)
	assert.Equal(t, state.Remaining, after.Remaining)
	assert.Equal(t, model.TriggerManual, after.Trigger)
}

func TestService_StartWithoutClient(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil, "a")
	_, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	assert.True(t, types.IsConfiguration(err), err)
	state, err := f.runner.Status(ctx)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Empty(t, state.RunID)
}

func TestService_Drain(t *testing.T) {
	type testCase struct {
		name          string
		keys          []string
		client        verifier.Client
		missing       []string
		expectChanges int
		expectErrors  int
		expectLedger  []string
	}
	testCases := []testCase{
		{
			name:          "only B flagged",
			keys:          []string{"A", "B", "C"},
			client:        byKey("B"),
			expectChanges: 1,
			expectLedger:  []string{"B"},
		},
		{
			name: "every call fails",
			keys: []string{"a", "b", "c", "d"},
			client: verifier.ClientFunc(func(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
				return nil, errors.New("service unavailable")
			}),
			expectErrors: 4,
		},
		{
			name:          "mixed failures",
			keys:          []string{"a", "b", "c", "d", "e"},
			client:        byKey("a", "e"),
			missing:       []string{"c"},
			expectChanges: 2,
			expectErrors:  1,
			expectLedger:  []string{"a", "e"},
		},
		{
			name: "malformed responses",
			keys: []string{"a", "b"},
			client: verifier.ClientFunc(func(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
				return &verifier.Response{Text: "I am not sure."}, nil
			}),
			expectErrors: 2,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(tc.client, tc.keys...)
			refs := f.refs(t)
			for _, key := range tc.missing {
				f.catalog.Remove(model.Ref{Category: "go", Key: key})
			}
			_, err := f.runner.Start(ctx, refs, model.TriggerManual, "all")
			require.NoError(t, err)

			results := drain(t, f.runner)
			last := results[len(results)-1]
			assert.True(t, last.Completed)

			state, err := f.runner.Status(ctx)
			require.NoError(t, err)
			assert.False(t, state.Running)
			assert.NotNil(t, state.CompletedAt)
			assert.Empty(t, state.Remaining)
			assert.Nil(t, state.CurrentTopic)
			assert.Equal(t, len(tc.keys), state.Processed)
			assert.Equal(t, tc.expectChanges, state.ChangesFound)
			assert.Equal(t, tc.expectErrors, state.Errors)
			assert.Len(t, state.ErrorLog, tc.expectErrors)

			changes, err := f.ledger.List(ctx)
			require.NoError(t, err)
			var keys []string
			for _, change := range changes {
				assert.Equal(t, model.OriginRun, change.Origin)
				assert.Equal(t, state.RunID, change.RunID)
				keys = append(keys, change.Ref.Key)
			}
			assert.ElementsMatch(t, tc.expectLedger, keys)

			entry, ok, err := f.history.Latest(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, state.RunID, entry.RunID)
			assert.Equal(t, len(tc.keys), entry.Reviewed)
			assert.Equal(t, tc.expectChanges, entry.ChangesFound)
			assert.Equal(t, tc.expectErrors, entry.Errors)

			idle, err := f.runner.Tick(ctx)
			require.NoError(t, err)
			assert.True(t, idle.Idle)
		})
	}
}

func TestService_ErrorLogBound(t *testing.T) {
	ctx := context.Background()
	keys := make([]string, 15)
	for i := range keys {
		keys[i] = string(rune('a' + i))
	}
	f := newFixture(verifier.ClientFunc(func(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
		return nil, errors.New("down")
	}), keys...)
	_, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	require.NoError(t, err)
	drain(t, f.runner)
	state, err := f.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, state.Errors)
	require.Len(t, state.ErrorLog, model.MaxErrorLog)
	assert.Equal(t, "f", state.ErrorLog[0].Ref.Key)
	assert.Equal(t, "o", state.ErrorLog[model.MaxErrorLog-1].Ref.Key)
}

func TestService_CancelMidTick(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	f := newFixture(verifier.ClientFunc(func(ctx context.Context, request *verifier.Request) (*verifier.Response, error) {
		close(entered)
		<-release
		return &verifier.Response{Text: stale}, nil
	}), "a", "b")
	_, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	require.NoError(t, err)

	done := make(chan *TickResult, 1)
	go func() {
		result, err := f.runner.Tick(ctx)
		assert.NoError(t, err)
		done <- result
	}()
	<-entered
	cancelled, err := f.runner.Cancel(ctx)
	require.NoError(t, err)
	assert.False(t, cancelled.Running)
	close(release)

	result := <-done
	assert.True(t, result.Discarded)
	assert.False(t, result.Proposed)

	size, err := f.ledger.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, size)
	state, err := f.runner.Status(ctx)
	require.NoError(t, err)
	assert.False(t, state.Running)
	assert.Equal(t, 0, state.Processed)
	assert.Empty(t, state.Remaining)

	entries, err := f.history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestService_Resume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(byKey("b"), "a", "b", "c")
	started, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	require.NoError(t, err)

	// simulate a crash after the pop of "a"
	record := dao.NewRecord[model.QueueState](f.store, RecordKey)
	_, err = record.Mutate(ctx, func(state *model.QueueState) error {
		ref, _ := state.Pop()
		state.CurrentTopic = &ref
		return nil
	})
	require.NoError(t, err)

	resumed, err := f.runner.Resume(ctx)
	require.NoError(t, err)
	assert.Nil(t, resumed.CurrentTopic)
	assert.Equal(t, started.Remaining, resumed.Remaining)
	assert.Equal(t, []time.Duration{0, 0}, f.scheduler.delays)

	drain(t, f.runner)
	state, err := f.runner.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, state.Processed)
	assert.Equal(t, 1, state.ChangesFound)
}

func TestService_TickScheduling(t *testing.T) {
	ctx := context.Background()
	f := newFixture(byKey(), "a", "b")
	_, err := f.runner.Start(ctx, f.refs(t), model.TriggerManual, "all")
	require.NoError(t, err)

	first, err := f.runner.Tick(ctx)
	require.NoError(t, err)
	assert.False(t, first.Completed)
	second, err := f.runner.Tick(ctx)
	require.NoError(t, err)
	assert.True(t, second.Completed, "draining tick completes the run")
	assert.Equal(t, []time.Duration{0, time.Millisecond}, f.scheduler.delays)
}

func TestService_Notify(t *testing.T) {
	type testCase struct {
		name   string
		config model.ScheduleConfig
		expect int
	}
	testCases := []testCase{
		{name: "enabled", config: model.ScheduleConfig{NotifyEnabled: true, NotifyAddress: "ops@example.com"}, expect: 1},
		{name: "disabled", config: model.ScheduleConfig{NotifyAddress: "ops@example.com"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(byKey("a"), "a")
			var sent []string
			WithNotifier(notifier.Func(func(ctx context.Context, address, subject, body string) error {
				sent = append(sent, address+": "+subject)
				return errors.New("delivery failures are ignored")
			}), f.schedule)(f.runner)
			_, err := f.schedule.Save(ctx, tc.config)
			require.NoError(t, err)

			_, err = f.runner.Start(ctx, f.refs(t), model.TriggerScheduled, "all")
			require.NoError(t, err)
			drain(t, f.runner)
			require.Len(t, sent, tc.expect)
			if tc.expect > 0 {
				assert.Equal(t, "ops@example.com: Topic review completed: 1 reviewed, 1 changes, 0 errors", sent[0])
			}
		})
	}
}
