package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
)

func TestParse(t *testing.T) {
	type testCase struct {
		name      string
		input     string
		expect    *model.Outcome
		expectErr bool
	}
	testCases := []testCase{
		{
			name:  "plain json",
			input: `{"needsUpdate": false, "confidence": "high", "summary": "all current"}`,
			expect: &model.Outcome{
				UpdateType: model.UpdateNone,
				Confidence: model.ConfidenceHigh,
				Summary:    "all current",
			},
		},
		{
			name: "fenced with prose",
			input: "Here is my review.\n```json\n" +
				`{"needs_update": "yes", "update_type": "major", "confidence": 0.8, "suggested_content": "new text", "sources_checked": ["a", "b"]}` +
				"\n```\nLet me know.",
			expect: &model.Outcome{
				NeedsUpdate:      true,
				UpdateType:       model.UpdateSignificant,
				Confidence:       model.ConfidenceHigh,
				SuggestedContent: "new text",
				SourcesChecked:   []string{"a", "b"},
			},
		},
		{
			name:  "unknown update type defaults to minor",
			input: `{"NeedsUpdate": true, "updateType": "tweak", "suggestedContent": "x", "confidence": "certain"}`,
			expect: &model.Outcome{
				NeedsUpdate:      true,
				UpdateType:       model.UpdateMinor,
				Confidence:       model.ConfidenceLow,
				SuggestedContent: "x",
			},
		},
		{
			name:  "fence inside content",
			input: "{\"needsUpdate\": true, \"updateType\": \"rewrite\", \"suggestedContent\": \"use ```go``` blocks\", \"confidence\": 55}",
			expect: &model.Outcome{
				NeedsUpdate:      true,
				UpdateType:       model.UpdateRewrite,
				Confidence:       model.ConfidenceMedium,
				SuggestedContent: "use ```go``` blocks",
			},
		},
		{
			name:  "insights as string",
			input: `{"needsUpdate": false, "insights": "one more thing"}`,
			expect: &model.Outcome{
				UpdateType: model.UpdateNone,
				Confidence: model.ConfidenceLow,
				Insights:   []string{"one more thing"},
			},
		},
		{name: "empty", input: "  ", expectErr: true},
		{name: "no object", input: "I could not verify this topic.", expectErr: true},
		{name: "invalid json", input: `{"needsUpdate": tru`, expectErr: true},
		{name: "update without content", input: `{"needsUpdate": true, "updateType": "minor"}`, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Parse(tc.input)
			if tc.expectErr {
				assert.True(t, types.IsParse(err), err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}
