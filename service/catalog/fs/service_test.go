package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/service/catalog"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc, err := New("mem://localhost/catalog/" + t.Name())
	require.NoError(t, err)

	topics := []*model.Topic{
		{Ref: model.Ref{Category: "science", Key: "atoms"}, Title: "Atoms", Content: "Atoms are small.",
			References: []model.Reference{{Title: "Intro", URL: "https://example.com/atoms"}},
			Hints:      model.Hints{Focus: []string{"structure"}}},
		{Ref: model.Ref{Category: "science", Key: "cells"}, Title: "Cells", Content: "Cells divide."},
		{Ref: model.Ref{Category: "history", Key: "rome"}, Title: "Rome", Content: "Rome was founded."},
	}
	for _, topic := range topics {
		require.NoError(t, svc.Save(ctx, topic))
	}

	type testCase struct {
		name   string
		filter catalog.Filter
		expect []string
	}
	testCases := []testCase{
		{name: "all", filter: catalog.Filter{}, expect: []string{"history/rome", "science/atoms", "science/cells"}},
		{name: "category", filter: catalog.Filter{Category: "science"}, expect: []string{"science/atoms", "science/cells"}},
		{name: "pattern", filter: catalog.Filter{Pattern: "*/c*"}, expect: []string{"science/cells"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			refs, err := svc.ListTopics(ctx, tc.filter)
			require.NoError(t, err)
			var actual []string
			for _, ref := range refs {
				actual = append(actual, ref.String())
			}
			assert.Equal(t, tc.expect, actual)
		})
	}

	atoms := model.Ref{Category: "science", Key: "atoms"}
	topic, err := svc.GetTopic(ctx, atoms)
	require.NoError(t, err)
	assert.Equal(t, "Atoms", topic.Title)
	assert.Equal(t, []string{"structure"}, topic.Hints.Focus)

	appliedAt := time.Date(2026, 5, 6, 7, 0, 0, 0, time.UTC)
	require.NoError(t, svc.UpdateTopic(ctx, atoms, "Atoms are very small.", model.UpdateRecord{ChangeID: "c1", UpdateType: model.UpdateMinor, AppliedAt: appliedAt}))
	topic, err = svc.GetTopic(ctx, atoms)
	require.NoError(t, err)
	assert.Equal(t, "Atoms are very small.", topic.Content)
	assert.Len(t, topic.UpdateHistory, 1)
	require.NotNil(t, topic.LastVerified)
	assert.True(t, appliedAt.Equal(*topic.LastVerified))

	require.NoError(t, svc.Delete(ctx, atoms))
	_, err = svc.GetTopic(ctx, atoms)
	assert.True(t, types.IsNotFound(err))
	err = svc.UpdateTopic(ctx, atoms, "x", model.UpdateRecord{})
	assert.True(t, types.IsNotFound(err))
}
