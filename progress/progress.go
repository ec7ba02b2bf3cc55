package progress

import (
	"sync"
	"time"

	"github.com/viant/curator/model"
)

// Report summarises how far a run has progressed.
type Report struct {
	RunID        string        `json:"runId,omitempty"`
	Scope        string        `json:"scope,omitempty"`
	Running      bool          `json:"running"`
	Total        int           `json:"total"`
	Processed    int           `json:"processed"`
	Remaining    int           `json:"remaining"`
	ChangesFound int           `json:"changesFound"`
	Errors       int           `json:"errors"`
	Current      string        `json:"current,omitempty"`
	Percent      float64       `json:"percent"`
	Elapsed      time.Duration `json:"elapsed"`
	// ETA extrapolates the average time per processed topic, it is zero until
	// the first topic commits.
	ETA time.Duration `json:"eta,omitempty"`
}

// Of builds the report of state at now.
func Of(state *model.QueueState, now time.Time) Report {
	if state == nil {
		return Report{}
	}
	ret := Report{
		RunID:        state.RunID,
		Scope:        state.Scope,
		Running:      state.Running,
		Total:        state.Total,
		Processed:    state.Processed,
		Remaining:    len(state.Remaining),
		ChangesFound: state.ChangesFound,
		Errors:       state.Errors,
	}
	if state.CurrentTopic != nil {
		ret.Current = state.CurrentTopic.String()
		ret.Remaining++
	}
	if ret.Total > 0 {
		ret.Percent = float64(ret.Processed) * 100 / float64(ret.Total)
	}
	if state.StartedAt != nil {
		end := now
		if state.CompletedAt != nil {
			end = *state.CompletedAt
		}
		ret.Elapsed = end.Sub(*state.StartedAt)
	}
	if state.Running && ret.Processed > 0 {
		ret.ETA = ret.Elapsed / time.Duration(ret.Processed) * time.Duration(ret.Remaining)
	}
	return ret
}

// Tracker dispatches reports to registered observers. It is safe for
// concurrent use.
type Tracker struct {
	mux       sync.RWMutex
	observers []func(Report)
}

// OnChange registers an observer invoked after every committed topic.
func (t *Tracker) OnChange(observer func(Report)) {
	if t == nil || observer == nil {
		return
	}
	t.mux.Lock()
	t.observers = append(t.observers, observer)
	t.mux.Unlock()
}

// Update notifies observers with the report of state. Observers run on the
// caller goroutine, outside of the tracker lock.
func (t *Tracker) Update(state *model.QueueState, now time.Time) {
	if t == nil {
		return
	}
	t.mux.RLock()
	observers := t.observers
	t.mux.RUnlock()
	if len(observers) == 0 {
		return
	}
	report := Of(state, now)
	for _, observer := range observers {
		observer(report)
	}
}
