package model

import (
	"fmt"
	"strings"
	"time"
)

// MaxUpdateHistory bounds the per-topic update history.
const MaxUpdateHistory = 10

// Ref identifies a topic within the catalog.
type Ref struct {
	Category string `json:"category" yaml:"category"`
	Key      string `json:"key" yaml:"key"`
}

// String returns category/key.
func (r Ref) String() string {
	return r.Category + "/" + r.Key
}

// IsZero reports whether the ref is empty.
func (r Ref) IsZero() bool {
	return r.Category == "" && r.Key == ""
}

// ParseRef parses a category/key pair.
func ParseRef(text string) (Ref, error) {
	index := strings.Index(text, "/")
	if index <= 0 || index == len(text)-1 {
		return Ref{}, fmt.Errorf("invalid topic ref %q, expected category/key", text)
	}
	return Ref{Category: text[:index], Key: text[index+1:]}, nil
}

// Reference is a structured source citation attached to a topic.
type Reference struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Hints steer the verification of a topic.
type Hints struct {
	Focus   []string `json:"focus,omitempty" yaml:"focus,omitempty"`
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Notes   string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// UpdateRecord describes one applied change.
type UpdateRecord struct {
	ChangeID   string     `json:"changeId" yaml:"changeId"`
	UpdateType UpdateType `json:"updateType" yaml:"updateType"`
	Summary    string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	AppliedAt  time.Time  `json:"appliedAt" yaml:"appliedAt"`
}

// Topic is a unit of catalog content subject to periodic verification.
type Topic struct {
	Ref           `yaml:",inline"`
	Title         string         `json:"title" yaml:"title"`
	Content       string         `json:"content" yaml:"content"`
	References    []Reference    `json:"references,omitempty" yaml:"references,omitempty"`
	Hints         Hints          `json:"hints,omitempty" yaml:"hints,omitempty"`
	LastVerified  *time.Time     `json:"lastVerified,omitempty" yaml:"lastVerified,omitempty"`
	UpdateHistory []UpdateRecord `json:"updateHistory,omitempty" yaml:"updateHistory,omitempty"`
}

// Apply writes approved content into the topic, stamps it as verified and
// appends the update record, keeping at most MaxUpdateHistory records.
func (t *Topic) Apply(content string, record UpdateRecord) {
	t.Content = content
	at := record.AppliedAt
	t.LastVerified = &at
	t.UpdateHistory = append(t.UpdateHistory, record)
	if overflow := len(t.UpdateHistory) - MaxUpdateHistory; overflow > 0 {
		t.UpdateHistory = append([]UpdateRecord(nil), t.UpdateHistory[overflow:]...)
	}
}
