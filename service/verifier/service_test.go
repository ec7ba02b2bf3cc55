package verifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/curator/model"
	"github.com/viant/curator/model/types"
	"github.com/viant/curator/policy"
)

func replyWith(text string) ClientFunc {
	return func(ctx context.Context, request *Request) (*Response, error) {
		return &Response{Text: text}, nil
	}
}

func TestService_Verify(t *testing.T) {
	topic := &model.Topic{Ref: model.Ref{Category: "go", Key: "generics"}, Title: "Generics", Content: "old"}
	enrich := &policy.Policy{Supplemental: policy.ModeEnrich}

	type testCase struct {
		name        string
		client      Client
		ctxPolicy   *policy.Policy
		expectOK    bool
		proposes    bool
		expectCheck func(error) bool
	}
	testCases := []testCase{
		{
			name:     "needs update",
			client:   replyWith(`{"needsUpdate": true, "updateType": "minor", "suggestedContent": "new", "confidence": "high"}`),
			expectOK: true,
			proposes: true,
		},
		{
			name:     "current",
			client:   replyWith(`{"needsUpdate": false, "confidence": "high"}`),
			expectOK: true,
		},
		{
			name:     "insights without enrichment",
			client:   replyWith(`{"needsUpdate": false, "insights": ["more"], "suggestedContent": "new"}`),
			expectOK: true,
		},
		{
			name:      "insights with enrichment from context",
			client:    replyWith(`{"needsUpdate": false, "insights": ["more"], "suggestedContent": "new"}`),
			ctxPolicy: enrich,
			expectOK:  true,
			proposes:  true,
		},
		{
			name:        "malformed response",
			client:      replyWith("sorry, no idea"),
			expectCheck: types.IsParse,
		},
		{
			name: "client error",
			client: ClientFunc(func(ctx context.Context, request *Request) (*Response, error) {
				return nil, errors.New("connection reset")
			}),
			expectCheck: types.IsTransport,
		},
		{
			name: "client panic",
			client: ClientFunc(func(ctx context.Context, request *Request) (*Response, error) {
				panic("boom")
			}),
			expectCheck: types.IsTransport,
		},
		{
			name: "timeout",
			client: ClientFunc(func(ctx context.Context, request *Request) (*Response, error) {
				time.Sleep(time.Second)
				return &Response{Text: "{}"}, nil
			}),
			expectCheck: func(err error) bool {
				var transport *types.TransportError
				return errors.As(err, &transport) && transport.Timeout
			},
		},
		{
			name:        "missing client",
			expectCheck: types.IsConfiguration,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := New(tc.client, WithTimeout(50*time.Millisecond))
			ctx := context.Background()
			if tc.ctxPolicy != nil {
				ctx = policy.WithPolicy(ctx, tc.ctxPolicy)
			}
			result := srv.Verify(ctx, topic)
			require.NotNil(t, result)
			assert.Equal(t, topic.Ref, result.Ref)
			assert.Equal(t, tc.expectOK, result.OK())
			assert.Equal(t, tc.proposes, result.Proposes())
			if tc.expectCheck != nil {
				assert.True(t, tc.expectCheck(result.Err), result.Err)
			}
		})
	}
}

func TestService_RequestCarriesHints(t *testing.T) {
	topic := &model.Topic{
		Ref:     model.Ref{Category: "go", Key: "modules"},
		Title:   "Modules",
		Content: "go.mod basics",
		Hints:   model.Hints{Focus: []string{"workspaces"}, Sources: []string{"go.dev/ref/mod"}},
	}
	var captured *Request
	srv := New(ClientFunc(func(ctx context.Context, request *Request) (*Response, error) {
		captured = request
		return &Response{Text: `{"needsUpdate": false}`}, nil
	}))
	result := srv.Verify(context.Background(), topic)
	require.True(t, result.OK())
	require.NotNil(t, captured)
	assert.Equal(t, topic.Hints, captured.Hints)
	assert.Contains(t, captured.Prompt, "workspaces")
	assert.Contains(t, captured.Prompt, "go.mod basics")
}
