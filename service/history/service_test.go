package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/service/dao/store"
)

func TestService_Append(t *testing.T) {
	ctx := context.Background()
	type testCase struct {
		name       string
		runs       int
		expectLen  int
		expectHead string
	}
	testCases := []testCase{
		{name: "empty", runs: 0},
		{name: "under bound", runs: 3, expectLen: 3, expectHead: "run-1"},
		{name: "at bound", runs: 20, expectLen: 20, expectHead: "run-1"},
		{name: "over bound", runs: 25, expectLen: 20, expectHead: "run-6"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := New(store.NewMemoryStore())
			base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := 1; i <= tc.runs; i++ {
				err := srv.Append(ctx, model.HistoryEntry{
					RunID:     fmt.Sprintf("run-%d", i),
					Timestamp: base.Add(time.Duration(i) * time.Hour),
					Reviewed:  i,
					Trigger:   model.TriggerManual,
				})
				require.NoError(t, err)
			}
			entries, err := srv.List(ctx)
			require.NoError(t, err)
			assert.Len(t, entries, tc.expectLen)
			latest, ok, err := srv.Latest(ctx)
			require.NoError(t, err)
			if tc.runs == 0 {
				assert.False(t, ok)
				return
			}
			assert.Equal(t, tc.expectHead, entries[0].RunID)
			for i := 1; i < len(entries); i++ {
				assert.True(t, entries[i-1].Timestamp.Before(entries[i].Timestamp))
			}
			assert.True(t, ok)
			assert.Equal(t, fmt.Sprintf("run-%d", tc.runs), latest.RunID)
		})
	}
}
