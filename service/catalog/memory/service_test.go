package memory

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

func newTopic(key string) *model.Topic {
	verified := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	return &model.Topic{
		Ref:          model.Ref{Category: "go", Key: key},
		Title:        key,
		Content:      "content of " + key,
		References:   []model.Reference{{Title: "docs", URL: "https://go.dev/doc"}},
		Hints:        model.Hints{Focus: []string{"versions"}, Sources: []string{"go.dev"}},
		LastVerified: &verified,
	}
}

func TestService_TopicsAreCopied(t *testing.T) {
	type testCase struct {
		name   string
		mutate func(topic *model.Topic)
	}
	testCases := []testCase{
		{name: "focus", mutate: func(topic *model.Topic) { topic.Hints.Focus[0] = "changed" }},
		{name: "sources", mutate: func(topic *model.Topic) { topic.Hints.Sources[0] = "changed" }},
		{name: "last verified", mutate: func(topic *model.Topic) { *topic.LastVerified = time.Time{} }},
		{name: "references", mutate: func(topic *model.Topic) { topic.References[0].URL = "changed" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			original := newTopic("modules")
			srv := New(original)
			tc.mutate(original)

			stored, err := srv.GetTopic(ctx, original.Ref)
			require.NoError(t, err)
			assert.Equal(t, newTopic("modules"), stored)

			tc.mutate(stored)
			again, err := srv.GetTopic(ctx, original.Ref)
			require.NoError(t, err)
			assert.Equal(t, newTopic("modules"), again)
		})
	}
}

func TestService_UpdateTopic(t *testing.T) {
	ctx := context.Background()
	srv := New(newTopic("modules"))
	applied := time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)
	ref := model.Ref{Category: "go", Key: "modules"}
	require.NoError(t, srv.UpdateTopic(ctx, ref, "fresh", model.UpdateRecord{ChangeID: "c1", UpdateType: model.UpdateMinor, AppliedAt: applied}))

	topic, err := srv.GetTopic(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "fresh", topic.Content)
	require.NotNil(t, topic.LastVerified)
	assert.True(t, applied.Equal(*topic.LastVerified))
	require.Len(t, topic.UpdateHistory, 1)

	err = srv.UpdateTopic(ctx, model.Ref{Category: "go", Key: "missing"}, "x", model.UpdateRecord{})
	assert.True(t, types.IsNotFound(err), err)
}

func TestService_ListTopics(t *testing.T) {
	ctx := context.Background()
	srv := New(newTopic("b"), newTopic("a"), &model.Topic{Ref: model.Ref{Category: "js", Key: "c"}})
	refs, err := srv.ListTopics(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []model.Ref{{Category: "go", Key: "a"}, {Category: "go", Key: "b"}, {Category: "js", Key: "c"}}, refs)

	srv.Remove(model.Ref{Category: "go", Key: "a"})
	refs, err = srv.ListTopics(ctx, catalog.ParseScope("go"))
	require.NoError(t, err)
	assert.Equal(t, []model.Ref{{Category: "go", Key: "b"}}, refs)
}
