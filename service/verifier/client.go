package verifier

import (
	"context"

	"github.com/viant/curator/model"
)

// Request is one verification call for a topic.
type Request struct {
	Ref        model.Ref
	Title      string
	Content    string
	References []model.Reference
	Hints      model.Hints
	Prompt     string
}

// Response carries the raw, possibly free-form, text returned by the service.
type Response struct {
	Text  string
	Model string
}

// Client is a stateless adapter to an external verification service.
type Client interface {
	Review(ctx context.Context, request *Request) (*Response, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, request *Request) (*Response, error)

// Review calls fn.
func (fn ClientFunc) Review(ctx context.Context, request *Request) (*Response, error) {
	return fn(ctx, request)
}

// NewRequest builds a request from topic content and hints.
func NewRequest(topic *model.Topic) *Request {
	return &Request{
		Ref:        topic.Ref,
		Title:      topic.Title,
		Content:    topic.Content,
		References: topic.References,
		Hints:      topic.Hints,
		Prompt:     BuildPrompt(topic),
	}
}
