package model

import "time"

// MaxErrorLog bounds the per-run error list.
const MaxErrorLog = 10

// Trigger tells what started a run.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// ErrorEntry is one recorded per-topic failure.
type ErrorEntry struct {
	Ref     Ref       `json:"ref"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// QueueState is the persisted state of the review queue. At most one state is
// running at any time.
type QueueState struct {
	RunID        string       `json:"runId,omitempty"`
	Scope        string       `json:"scope,omitempty"`
	Trigger      Trigger      `json:"trigger,omitempty"`
	Remaining    []Ref        `json:"remaining,omitempty"`
	Running      bool         `json:"running"`
	Total        int          `json:"total"`
	Processed    int          `json:"processed"`
	ChangesFound int          `json:"changesFound"`
	Errors       int          `json:"errors"`
	CurrentTopic *Ref         `json:"currentTopic,omitempty"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
	ErrorLog     []ErrorEntry `json:"errorLog,omitempty"`
}

// RecordError counts a failure and keeps the last MaxErrorLog entries.
func (s *QueueState) RecordError(ref Ref, err error, at time.Time) {
	s.Errors++
	s.ErrorLog = append(s.ErrorLog, ErrorEntry{Ref: ref, Message: err.Error(), At: at})
	if overflow := len(s.ErrorLog) - MaxErrorLog; overflow > 0 {
		s.ErrorLog = append([]ErrorEntry(nil), s.ErrorLog[overflow:]...)
	}
}

// Pop removes and returns the head of the remaining list.
func (s *QueueState) Pop() (Ref, bool) {
	if len(s.Remaining) == 0 {
		return Ref{}, false
	}
	head := s.Remaining[0]
	s.Remaining = s.Remaining[1:]
	return head, true
}

// Clone returns a deep copy.
func (s *QueueState) Clone() *QueueState {
	if s == nil {
		return nil
	}
	ret := *s
	ret.Remaining = append([]Ref(nil), s.Remaining...)
	ret.ErrorLog = append([]ErrorEntry(nil), s.ErrorLog...)
	if s.CurrentTopic != nil {
		current := *s.CurrentTopic
		ret.CurrentTopic = &current
	}
	return &ret
}
