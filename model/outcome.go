package model

import "strings"

// UpdateType classifies a proposed change.
type UpdateType string

const (
	UpdateNone        UpdateType = "none"
	UpdateMinor       UpdateType = "minor"
	UpdateSignificant UpdateType = "significant"
	UpdateRewrite     UpdateType = "rewrite"
)

// ParseUpdateType returns the update type for text, ok is false for unknown values.
func ParseUpdateType(text string) (UpdateType, bool) {
	switch UpdateType(strings.ToLower(strings.TrimSpace(text))) {
	case UpdateNone:
		return UpdateNone, true
	case UpdateMinor:
		return UpdateMinor, true
	case UpdateSignificant, "major":
		return UpdateSignificant, true
	case UpdateRewrite:
		return UpdateRewrite, true
	}
	return UpdateNone, false
}

// Confidence expresses how sure the verification service is about an outcome.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence returns the confidence for text, ok is false for unknown values.
func ParseConfidence(text string) (Confidence, bool) {
	switch Confidence(strings.ToLower(strings.TrimSpace(text))) {
	case ConfidenceLow:
		return ConfidenceLow, true
	case ConfidenceMedium:
		return ConfidenceMedium, true
	case ConfidenceHigh:
		return ConfidenceHigh, true
	}
	return ConfidenceLow, false
}

// Rank orders confidences, unknown values rank lowest.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Outcome is the structured result of verifying one topic.
type Outcome struct {
	NeedsUpdate      bool       `json:"needsUpdate"`
	UpdateType       UpdateType `json:"updateType"`
	Confidence       Confidence `json:"confidence"`
	Summary          string     `json:"summary,omitempty"`
	SuggestedContent string     `json:"suggestedContent,omitempty"`
	Insights         []string   `json:"insights,omitempty"`
	SourcesChecked   []string   `json:"sourcesChecked,omitempty"`
}

// Clone returns a deep copy.
func (o *Outcome) Clone() *Outcome {
	if o == nil {
		return nil
	}
	ret := *o
	ret.Insights = append([]string(nil), o.Insights...)
	ret.SourcesChecked = append([]string(nil), o.SourcesChecked...)
	return &ret
}
