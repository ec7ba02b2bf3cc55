package model

import "time"

// Origin tells which path proposed a change.
type Origin string

const (
	OriginRun      Origin = "run"
	OriginOnDemand Origin = "on-demand"
)

// DiffStats counts changed lines of a preview.
type DiffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// PendingChange is a proposed edit awaiting a human decision.
type PendingChange struct {
	ID        string    `json:"id"`
	Ref       Ref       `json:"ref"`
	Title     string    `json:"title,omitempty"`
	Outcome   *Outcome  `json:"outcome"`
	Origin    Origin    `json:"origin,omitempty"`
	RunID     string    `json:"runId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Preview   string    `json:"preview,omitempty"`
	Stats     DiffStats `json:"stats"`
}
