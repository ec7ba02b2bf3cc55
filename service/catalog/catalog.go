// Package catalog defines the topic catalog the review engine reads topics
// from and writes approved content back to.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/viant/curator/model"
)

// Service is the topic catalog.
type Service interface {
	// ListTopics returns refs matching filter ordered by category and key.
	ListTopics(ctx context.Context, filter Filter) ([]model.Ref, error)

	// GetTopic returns a topic or a types.NotFoundError.
	GetTopic(ctx context.Context, ref model.Ref) (*model.Topic, error)

	// UpdateTopic writes approved content and appends the update record, it
	// returns a types.NotFoundError when the topic is gone.
	UpdateTopic(ctx context.Context, ref model.Ref, content string, record model.UpdateRecord) error
}

// Filter selects topics for a run.
type Filter struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	// Pattern is a doublestar glob matched against category/key.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// ScopeAll selects every topic.
const ScopeAll = "all"

// ParseScope converts an operator scope into a filter: empty or "all" selects
// everything, a glob is matched against category/key, anything else is a
// category name.
func ParseScope(scope string) Filter {
	scope = strings.TrimSpace(scope)
	switch {
	case scope == "" || strings.EqualFold(scope, ScopeAll):
		return Filter{}
	case strings.ContainsAny(scope, "*?[{/"):
		return Filter{Pattern: scope}
	}
	return Filter{Category: scope}
}

// String renders the filter back into a scope.
func (f Filter) String() string {
	switch {
	case f.Pattern != "":
		return f.Pattern
	case f.Category != "":
		return f.Category
	}
	return ScopeAll
}

// Match reports whether ref is selected.
func (f Filter) Match(ref model.Ref) bool {
	if f.Category != "" && f.Category != ref.Category {
		return false
	}
	if f.Pattern != "" {
		matched, err := doublestar.Match(f.Pattern, ref.String())
		if err != nil || !matched {
			return false
		}
	}
	return true
}

// SortRefs orders refs by category then key.
func SortRefs(refs []model.Ref) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Category != refs[j].Category {
			return refs[i].Category < refs[j].Category
		}
		return refs[i].Key < refs[j].Key
	})
}
