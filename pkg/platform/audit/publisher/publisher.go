// Package publisher emits audit events to a Store, synchronously by
// default or through a buffered channel when async mode is enabled.
// Async mode trades durability for latency: a full buffer drops the
// event rather than blocking the onboarding turn.
package publisher

import (
	"context"
	"sync"
	"time"

	id "onboard/pkg/domain"
	audit "onboard/pkg/platform/audit"
)

// Publisher fans audit events into a store.
type Publisher struct {
	store audit.Store

	async  chan audit.Event
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer
// size. Close drains the buffer before returning.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.async = make(chan audit.Event, size)
	}
}

// NewPublisher creates a publisher over the store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.async != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records the event. Timestamp defaults to now when unset. In async
// mode a full buffer drops the event silently; audit loss is preferable
// to stalling a producer's turn.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if p.async == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.async <- event:
	default:
	}
	return nil
}

// List returns events recorded for a session.
func (p *Publisher) List(ctx context.Context, sessionID id.SessionID) ([]audit.Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}

// Close drains pending async events and stops the worker.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		close(p.done)
		if p.async != nil {
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.async:
			_ = p.store.Append(context.Background(), event)
		case <-p.done:
			for {
				select {
				case event := <-p.async:
					_ = p.store.Append(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}
