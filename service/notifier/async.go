package notifier

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/viant/curator/service/messaging"
	"github.com/viant/curator/service/messaging/memory"
)

type envelope struct {
	Address string
	Subject string
	Body    string
}

// Async queues notifications and delivers them from a background worker.
// Send only enqueues; failed deliveries are logged and never retried.
type Async struct {
	target  Notifier
	queue   *memory.Queue[envelope]
	logger  zerolog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
	pending sync.WaitGroup
}

// NewAsync starts a worker delivering to target.
func NewAsync(target Notifier, logger zerolog.Logger) *Async {
	ctx, cancel := context.WithCancel(context.Background())
	ret := &Async{
		target: target,
		queue:  memory.NewQueue[envelope](memory.Config{MaxRetries: 0, DeadLetter: true, Buffer: 64}),
		logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go ret.run(ctx)
	return ret
}

func (a *Async) Send(ctx context.Context, address, subject, body string) error {
	a.pending.Add(1)
	if err := a.queue.Publish(ctx, &envelope{Address: address, Subject: subject, Body: body}); err != nil {
		a.pending.Done()
		return err
	}
	return nil
}

// Close waits for queued notifications until ctx is done, then stops the worker.
func (a *Async) Close(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(drained)
	}()
	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		err = ctx.Err()
	}
	a.cancel()
	<-a.done
	a.queue.Close()
	return err
}

// Failed returns the number of notifications that could not be delivered.
func (a *Async) Failed() int {
	return len(a.queue.DeadLetters())
}

func (a *Async) run(ctx context.Context) {
	defer close(a.done)
	for {
		message, err := a.queue.Consume(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				a.logger.Error().Err(err).Msg("notification queue failed")
			}
			return
		}
		a.deliver(ctx, message)
	}
}

func (a *Async) deliver(ctx context.Context, message messaging.Message[envelope]) {
	defer a.pending.Done()
	item := message.T()
	if err := a.target.Send(ctx, item.Address, item.Subject, item.Body); err != nil {
		a.logger.Warn().Err(err).Str("address", item.Address).Str("subject", item.Subject).Msg("failed to deliver notification")
		_ = message.Nack(err)
		return
	}
	_ = message.Ack()
}
