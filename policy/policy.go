// Policies separate factual corrections, flagged by the verification
// service, from supplemental enrichment, which is only proposed when
// explicitly enabled. A Policy can be configured globally or attached to a
// single review via context.

package policy

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/curator/model"
)

// Supplemental content modes.
const (
	ModeOff    = "off"    // propose only what the service flags as needing update (default)
	ModeEnrich = "enrich" // also propose supplemental insights as minor updates
)

// Policy represents the proposal settings for a review.
//
//   - Supplemental controls promotion of enrichment-only outcomes.
//   - MinConfidence demotes proposals the service is less sure about.
//
// A nil *Policy applies the defaults.
type Policy struct {
	Supplemental  string
	MinConfidence model.Confidence
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Supplemental  string `json:"supplemental,omitempty" yaml:"supplemental,omitempty" env:"CURATOR_POLICY_SUPPLEMENTAL" env-default:"off"`
	MinConfidence string `json:"minConfidence,omitempty" yaml:"min_confidence,omitempty" env:"CURATOR_POLICY_MIN_CONFIDENCE" env-default:"low"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Supplemental: p.Supplemental, MinConfidence: string(p.MinConfidence)}
}

// FromConfig converts a stored Config back to a runtime Policy.
func FromConfig(c *Config) (*Policy, error) {
	if c == nil {
		return nil, nil
	}
	ret := &Policy{Supplemental: strings.ToLower(strings.TrimSpace(c.Supplemental))}
	switch ret.Supplemental {
	case "":
		ret.Supplemental = ModeOff
	case ModeOff, ModeEnrich:
	default:
		return nil, fmt.Errorf("unsupported supplemental mode %q", c.Supplemental)
	}
	if c.MinConfidence != "" {
		confidence, ok := model.ParseConfidence(c.MinConfidence)
		if !ok {
			return nil, fmt.Errorf("unsupported confidence %q", c.MinConfidence)
		}
		ret.MinConfidence = confidence
	}
	return ret, nil
}

// Apply returns an adjusted copy of outcome.
func (p *Policy) Apply(outcome *model.Outcome) *model.Outcome {
	ret := outcome.Clone()
	if p == nil || ret == nil {
		return ret
	}
	if !ret.NeedsUpdate && p.Supplemental == ModeEnrich &&
		len(ret.Insights) > 0 && strings.TrimSpace(ret.SuggestedContent) != "" {
		ret.NeedsUpdate = true
		ret.UpdateType = model.UpdateMinor
	}
	if ret.NeedsUpdate && p.MinConfidence != "" && ret.Confidence.Rank() < p.MinConfidence.Rank() {
		ret.NeedsUpdate = false
		ret.UpdateType = model.UpdateNone
	}
	return ret
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy attached to ctx or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
