package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
)

func TestPreview(t *testing.T) {
	ref := model.Ref{Category: "go", Key: "slices"}
	type testCase struct {
		name      string
		current   string
		suggested string
		expect    model.DiffStats
	}
	testCases := []testCase{
		{name: "identical", current: "a\nb\n", suggested: "a\nb\n"},
		{name: "replace line", current: "a\nb\nc\n", suggested: "a\nB\nc\n", expect: model.DiffStats{Added: 1, Removed: 1}},
		{name: "append", current: "a\n", suggested: "a\nb\nc\n", expect: model.DiffStats{Added: 2}},
		{name: "from empty", current: "", suggested: "a\nb\n", expect: model.DiffStats{Added: 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			preview, stats, err := Preview(ref, tc.current, tc.suggested)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, stats)
			if tc.current == tc.suggested {
				assert.Empty(t, preview)
				return
			}
			assert.Contains(t, preview, "--- a/go/slices")
		})
	}
}
