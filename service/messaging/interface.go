// Package messaging defines the in-process outbox used to hand work, such as
// completion notifications, to background consumers.
package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by a non-blocking publish when the queue has no
// room left.
var ErrQueueFull = errors.New("queue is full")

// Queue represents a message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a message with payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume blocks until a message is available or ctx is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a consumed message.
type Message[T any] interface {
	// ID returns the message id.
	ID() string

	// T returns the payload of this message.
	T() *T

	// Attempt returns the 1-based delivery attempt.
	Attempt() int

	// Ack acknowledges successful processing of this message.
	Ack() error

	// Nack reports a failed delivery; the queue retries or dead-letters it.
	Nack(err error) error
}
