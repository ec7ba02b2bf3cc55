package curator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator"
	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	cmemory "github.com/viant/curator/service/catalog/memory"
	"github.com/viant/curator/service/dao/store"
)

func TestService_RunStartedByOtherInstance(t *testing.T) {
	ctx := context.Background()
	shared := store.NewMemoryStore()
	topics := cmemory.New(topic("go", "A"), topic("go", "B"), topic("go", "C"))

	server, err := curator.New(
		curator.WithStore(shared),
		curator.WithCatalog(topics),
		curator.WithClient(flagging("B")),
		curator.WithTickDelay(time.Millisecond),
		curator.WithTickPollInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	runtime := server.Runtime()
	require.NoError(t, runtime.Start(ctx))
	defer func() { assert.NoError(t, runtime.Shutdown(ctx)) }()

	client, err := curator.New(
		curator.WithStore(shared),
		curator.WithCatalog(topics),
		curator.WithClient(flagging("B")),
	)
	require.NoError(t, err)
	started, err := client.Start(ctx, "go")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state, err := server.Status(ctx)
		return err == nil && !state.Running && state.Processed == 3
	}, 5*time.Second, 5*time.Millisecond)

	entries, err := client.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, started.RunID, entries[0].RunID)
	assert.Equal(t, 3, entries[0].Reviewed)
	pending, err := client.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "B", pending[0].Ref.Key)
}

func TestService_StartScheduled(t *testing.T) {
	type testCase struct {
		name      string
		enabled   bool
		expectErr bool
	}
	testCases := []testCase{
		{name: "enabled", enabled: true},
		{name: "disabled", enabled: false, expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			srv, err := curator.New(
				curator.WithCatalog(cmemory.New(topic("go", "A"), topic("rust", "B"))),
				curator.WithClient(flagging()),
			)
			require.NoError(t, err)
			_, err = srv.SaveSchedule(ctx, model.ScheduleConfig{Enabled: tc.enabled, DayOfWeek: time.Monday, Hour: 6, Scope: "rust"})
			require.NoError(t, err)

			state, err := srv.StartScheduled(ctx)
			if tc.expectErr {
				assert.True(t, types.IsConfiguration(err), err)
				status, err := srv.Status(ctx)
				require.NoError(t, err)
				assert.False(t, status.Running)
				return
			}
			require.NoError(t, err)
			assert.True(t, state.Running)
			assert.Equal(t, model.TriggerScheduled, state.Trigger)
			assert.Equal(t, "rust", state.Scope)
			assert.Equal(t, 1, state.Total)
		})
	}
}
