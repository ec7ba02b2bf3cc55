package model

import "time"

// MaxHistory bounds the run history.
const MaxHistory = 20

// HistoryEntry summarises one completed run.
type HistoryEntry struct {
	RunID        string        `json:"runId"`
	Timestamp    time.Time     `json:"timestamp"`
	Scope        string        `json:"scope,omitempty"`
	Trigger      Trigger       `json:"trigger"`
	Reviewed     int           `json:"reviewed"`
	ChangesFound int           `json:"changesFound"`
	Errors       int           `json:"errors"`
	Duration     time.Duration `json:"duration"`
}
