package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/viant/curator/model"
)

func TestOf(t *testing.T) {
	started := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	completed := started.Add(40 * time.Second)
	current := model.Ref{Category: "go", Key: "c"}

	type testCase struct {
		name   string
		state  *model.QueueState
		now    time.Time
		expect Report
	}
	testCases := []testCase{
		{name: "nil", expect: Report{}},
		{
			name: "running",
			state: &model.QueueState{
				RunID: "r1", Scope: "go", Running: true, Total: 5, Processed: 2, ChangesFound: 1,
				Remaining:    []model.Ref{{Category: "go", Key: "d"}, {Category: "go", Key: "e"}},
				CurrentTopic: &current,
				StartedAt:    &started,
			},
			now: started.Add(20 * time.Second),
			expect: Report{
				RunID: "r1", Scope: "go", Running: true, Total: 5, Processed: 2, Remaining: 3, ChangesFound: 1,
				Current: "go/c", Percent: 40, Elapsed: 20 * time.Second, ETA: 30 * time.Second,
			},
		},
		{
			name:   "just started",
			state:  &model.QueueState{RunID: "r2", Running: true, Total: 2, Remaining: []model.Ref{{Key: "a"}, {Key: "b"}}, StartedAt: &started},
			now:    started.Add(time.Second),
			expect: Report{RunID: "r2", Running: true, Total: 2, Remaining: 2, Elapsed: time.Second},
		},
		{
			name:   "completed",
			state:  &model.QueueState{RunID: "r3", Total: 4, Processed: 4, Errors: 1, StartedAt: &started, CompletedAt: &completed},
			now:    started.Add(time.Hour),
			expect: Report{RunID: "r3", Total: 4, Processed: 4, Errors: 1, Percent: 100, Elapsed: 40 * time.Second},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Of(tc.state, tc.now))
		})
	}
}

func TestTracker_Update(t *testing.T) {
	var tracker Tracker
	tracker.Update(&model.QueueState{Total: 1}, time.Now())

	var reports []Report
	tracker.OnChange(func(report Report) { reports = append(reports, report) })
	tracker.OnChange(nil)
	tracker.Update(&model.QueueState{RunID: "r", Total: 2, Processed: 1}, time.Now())
	assert.Equal(t, []Report{{RunID: "r", Total: 2, Processed: 1, Percent: 50}}, reports)

	var unset *Tracker
	unset.Update(&model.QueueState{}, time.Now())
}
