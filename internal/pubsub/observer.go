// Package pubsub delivers events to handlers subscribed by event name.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"domaind/internal/model"
)

// Handler receives a published event.
type Handler func(ctx context.Context, e *model.Event) error

type subscription struct {
	id int
	h  Handler
}

// Observer is an in-process event channel. Handlers run synchronously on the
// publishing goroutine in subscription order.
type Observer struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscription
}

func NewObserver() *Observer { return &Observer{subs: make(map[string][]subscription)} }

// On subscribes h to events published under name and returns a function that
// removes the subscription. A nil handler is ignored.
func (o *Observer) On(name string, h Handler) func() {
	if h == nil {
		return func() {}
	}
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.subs[name] = append(o.subs[name], subscription{id: id, h: h})
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { o.off(name, id) })
	}
}

func (o *Observer) off(name string, id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	subs := o.subs[name]
	for i, s := range subs {
		if s.id == id {
			o.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(o.subs[name]) == 0 {
		delete(o.subs, name)
	}
}

// Notify hands e to every handler subscribed under name. All handlers run even
// when some fail; their errors are joined.
func (o *Observer) Notify(ctx context.Context, name string, e *model.Event) error {
	o.mu.RLock()
	subs := append([]subscription(nil), o.subs[name]...)
	o.mu.RUnlock()

	notifications.WithLabelValues(name).Inc()
	var errs []error
	for _, s := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.h(ctx, e); err != nil {
			handlerFailures.WithLabelValues(name).Inc()
			errs = append(errs, fmt.Errorf("handler %d: %w", s.id, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribers returns the number of handlers subscribed under name.
func (o *Observer) Subscribers(name string) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.subs[name])
}
