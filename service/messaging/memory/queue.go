// Package memory provides a channel backed messaging.Queue.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/curator/internal/clock"
	"github.com/viant/curator/internal/idgen"
	"github.com/viant/curator/service/messaging"
)

var errProcessed = errors.New("message already processed")

// Config for memory queue implementation.
type Config struct {
	// MaxRetries is the number of redeliveries after a Nack, zero disables retries.
	MaxRetries int
	RetryDelay time.Duration
	// DeadLetter keeps messages that exhausted their retries.
	DeadLetter bool
	Buffer     int
	// Blocking makes Publish wait for room instead of failing with messaging.ErrQueueFull.
	Blocking bool
}

// DefaultConfig returns a standard configuration for memory queue.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		DeadLetter: true,
		Buffer:     100,
		Blocking:   true,
	}
}

// DeadLetter is a message that exhausted its retries.
type DeadLetter[T any] struct {
	ID       string
	Payload  T
	Attempts int
	Err      error
	At       time.Time
}

// Message is a delivered queue item.
type Message[T any] struct {
	id        string
	payload   T
	attempt   int
	queue     *Queue[T]
	mu        sync.Mutex
	processed bool
}

func (m *Message[T]) ID() string   { return m.id }
func (m *Message[T]) T() *T        { return &m.payload }
func (m *Message[T]) Attempt() int { return m.attempt }

// Ack marks the message processed.
func (m *Message[T]) Ack() error {
	return m.settle()
}

// Nack redelivers the message after RetryDelay until MaxRetries is reached,
// then dead-letters it when enabled.
func (m *Message[T]) Nack(err error) error {
	if settleErr := m.settle(); settleErr != nil {
		return settleErr
	}
	q := m.queue
	if m.attempt <= q.config.MaxRetries {
		retry := &Message[T]{id: m.id, payload: m.payload, attempt: m.attempt + 1, queue: q}
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			select {
			case <-time.After(q.config.RetryDelay):
			case <-q.closed:
				return
			}
			select {
			case q.messages <- retry:
			case <-q.closed:
			}
		}()
		return nil
	}
	if q.config.DeadLetter {
		q.dlqMu.Lock()
		q.dlq = append(q.dlq, DeadLetter[T]{ID: m.id, Payload: m.payload, Attempts: m.attempt, Err: err, At: clock.Now()})
		q.dlqMu.Unlock()
	}
	return nil
}

func (m *Message[T]) settle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return errProcessed
	}
	m.processed = true
	return nil
}

// Queue is an in-memory messaging.Queue.
type Queue[T any] struct {
	messages  chan *Message[T]
	config    Config
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	dlqMu     sync.Mutex
	dlq       []DeadLetter[T]
}

// NewQueue creates an in-memory queue.
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
		closed:   make(chan struct{}),
	}
}

// Publish enqueues a copy of t.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{id: idgen.New(), payload: *t, attempt: 1, queue: q}
	if !q.config.Blocking {
		select {
		case q.messages <- msg:
			return nil
		default:
			return messaging.ErrQueueFull
		}
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume blocks until a message is available or ctx is done.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the number of queued messages.
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DeadLetters returns a snapshot of dead-lettered messages.
func (q *Queue[T]) DeadLetters() []DeadLetter[T] {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return append([]DeadLetter[T](nil), q.dlq...)
}

// Close stops pending redeliveries. Queued messages stay consumable.
func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() { close(q.closed) })
	q.wg.Wait()
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
