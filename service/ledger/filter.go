package ledger

import (
	"github.com/viant/curator/model"
)

// Filter selects pending changes in List.
type Filter func(change *model.PendingChange) bool

// WithCategory selects changes of a topic category.
func WithCategory(category string) Filter {
	return func(change *model.PendingChange) bool {
		return change.Ref.Category == category
	}
}

// WithMinConfidence selects changes at or above confidence.
func WithMinConfidence(confidence model.Confidence) Filter {
	return func(change *model.PendingChange) bool {
		return change.Outcome != nil && change.Outcome.Confidence.Rank() >= confidence.Rank()
	}
}

// WithUpdateType selects changes of any of the given update types.
func WithUpdateType(updateTypes ...model.UpdateType) Filter {
	return func(change *model.PendingChange) bool {
		if change.Outcome == nil {
			return false
		}
		for _, candidate := range updateTypes {
			if change.Outcome.UpdateType == candidate {
				return true
			}
		}
		return false
	}
}

// WithRunID selects changes proposed by a run.
func WithRunID(runID string) Filter {
	return func(change *model.PendingChange) bool {
		return change.RunID == runID
	}
}

func matches(change *model.PendingChange, filters []Filter) bool {
	for _, filter := range filters {
		if filter != nil && !filter(change) {
			return false
		}
	}
	return true
}
