package pubsub

import (
	"context"
	"errors"
	"sync"

	"domaind/internal/model"
)

// Notifier publishes an event under a name.
type Notifier interface {
	Notify(ctx context.Context, name string, e *model.Event) error
}

// Pending is an event whose publication failed.
type Pending struct {
	Name  string
	Event *model.Event
	Err   error
}

// MemoryOutbox holds events that could not be published so they can be
// redelivered later.
type MemoryOutbox struct {
	mu      sync.Mutex
	pending []Pending
}

func NewMemoryOutbox() *MemoryOutbox { return &MemoryOutbox{} }

// Put queues e for redelivery under name. cause is the publication error.
func (o *MemoryOutbox) Put(_ context.Context, name string, e *model.Event, cause error) error {
	o.mu.Lock()
	o.pending = append(o.pending, Pending{Name: name, Event: e, Err: cause})
	o.mu.Unlock()
	return nil
}

// Pending returns a snapshot of the queued events, oldest first.
func (o *MemoryOutbox) Pending() []Pending {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Pending, len(o.pending))
	copy(out, o.pending)
	return out
}

// Redeliver publishes every queued event through n, oldest first. Events that
// fail again stay queued with their new error.
func (o *MemoryOutbox) Redeliver(ctx context.Context, n Notifier) error {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()

	var failed []Pending
	var errs []error
	for _, p := range batch {
		if err := n.Notify(ctx, p.Name, p.Event); err != nil {
			p.Err = err
			failed = append(failed, p)
			errs = append(errs, err)
		}
	}
	if len(failed) > 0 {
		o.mu.Lock()
		o.pending = append(failed, o.pending...)
		o.mu.Unlock()
	}
	return errors.Join(errs...)
}
