package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

type Subscriber func(ctx context.Context, e Event) error

// Dispatcher delivers events synchronously to the subscribers of their kind,
// in subscription order.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[Kind][]namedSubscriber
}

type namedSubscriber struct {
	name string
	fn   Subscriber
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subscribers: make(map[Kind][]namedSubscriber)}
}

// Subscribe registers fn for kind. The name only shows up in logs and errors.
func (d *Dispatcher) Subscribe(kind Kind, name string, fn Subscriber) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[kind] = append(d.subscribers[kind], namedSubscriber{name: name, fn: fn})
	return nil
}

// Publish runs every subscriber of e's kind. A failing subscriber does not
// stop the others; all failures are returned joined.
func (d *Dispatcher) Publish(ctx context.Context, e Event) error {
	kind := e.Kind()
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	d.mu.RLock()
	subscribers := append([]namedSubscriber(nil), d.subscribers[kind]...)
	d.mu.RUnlock()

	if len(subscribers) == 0 {
		slog.DebugContext(ctx, "No subscribers for event", "kind", kind)
		return nil
	}

	var errs []error
	for _, s := range subscribers {
		if err := s.fn(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Event subscriber failed", "kind", kind, "subscriber", s.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	return errors.Join(errs...)
}
