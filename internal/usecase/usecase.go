// Package usecase implements the mutations of a model kind: add, edit and
// remove. Each one validates, persists and then publishes a named event.
//
// Publication happens after the change is saved and is best effort. When the
// channel reports a failure the event is handed to the configured Outbox and
// the caller receives a publish error; the saved change stays in place.
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"domaind/internal/model"
	"domaind/internal/pubsub"
)

// Repository loads and stores models of one kind. Find returns nil, nil when
// id is unknown.
type Repository interface {
	Find(ctx context.Context, id string) (*model.Model, error)
	Save(ctx context.Context, id string, m *model.Model) error
}

// Deleter removes a stored model.
type Deleter interface {
	Delete(ctx context.Context, id string) error
}

// Channel is the event channel use cases publish to.
type Channel interface {
	On(name string, h pubsub.Handler) func()
	Notify(ctx context.Context, name string, e *model.Event) error
}

// Outbox keeps events whose publication failed.
type Outbox interface {
	Put(ctx context.Context, name string, e *model.Event, cause error) error
}

// Registry builds models and events. *registry.Registry implements it.
type Registry interface {
	CreateModel(ctx context.Context, name string, args model.Fields) (*model.Model, error)
	CreateEvent(ctx context.Context, t model.EventType, modelName string, args model.Fields) (*model.Event, error)
	EventName(t model.EventType, modelName string) (string, error)
}

// Config wires a use case to its collaborators. Handlers are subscribed to the
// use case's event once, at construction, followed by a logging handler.
type Config struct {
	ModelName  string
	Registry   Registry
	Repository Repository
	Channel    Channel
	Handlers   []pubsub.Handler
	// Outbox is optional; without one a failed publication is only reported.
	Outbox Outbox
	Logger *zerolog.Logger
}

// base holds what every use case shares.
type base struct {
	name      string
	modelName string
	eventType model.EventType
	eventName string
	reg       Registry
	repo      Repository
	ch        Channel
	outbox    Outbox
	log       zerolog.Logger
}

func newBase(name string, t model.EventType, cfg Config) (*base, error) {
	if cfg.Registry == nil || cfg.Repository == nil || cfg.Channel == nil {
		return nil, model.ErrArgument(name + ": registry, repository and channel are required")
	}
	eventName, err := cfg.Registry.EventName(t, cfg.ModelName)
	if err != nil {
		return nil, err
	}
	b := &base{
		name:      name,
		modelName: cfg.ModelName,
		eventType: t,
		eventName: eventName,
		reg:       cfg.Registry,
		repo:      cfg.Repository,
		ch:        cfg.Channel,
		outbox:    cfg.Outbox,
		log:       zerolog.Nop(),
	}
	if cfg.Logger != nil {
		b.log = cfg.Logger.With().Str("usecase", name).Str("model", cfg.ModelName).Logger()
	}
	handlers := append(append([]pubsub.Handler(nil), cfg.Handlers...), pubsub.LogHandler(b.log))
	for _, h := range handlers {
		b.ch.On(eventName, h)
	}
	return b, nil
}

// withLogger makes the use case logger available to validators unless the
// caller already attached one.
func (b *base) withLogger(ctx context.Context) context.Context {
	if zerolog.Ctx(ctx).GetLevel() == zerolog.Disabled {
		return b.log.WithContext(ctx)
	}
	return ctx
}

func (b *base) find(ctx context.Context, id string) (*model.Model, error) {
	current, err := b.repo.Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", b.modelName, id, err)
	}
	if current == nil {
		return nil, model.ErrNotFound(id)
	}
	return current, nil
}

// publish notifies the channel. A failure parks e in the outbox and is
// reported as a publish error.
func (b *base) publish(ctx context.Context, e *model.Event) error {
	err := b.ch.Notify(ctx, b.eventName, e)
	if err == nil {
		return nil
	}
	b.log.Warn().Err(err).Str("event", b.eventName).Str("event_id", e.ID()).Msg("event publication failed")
	if b.outbox != nil {
		if perr := b.outbox.Put(ctx, b.eventName, e, err); perr != nil {
			b.log.Error().Err(perr).Str("event_id", e.ID()).Msg("outbox put failed")
		}
	}
	return model.ErrPublish(b.eventName, err)
}

func (b *base) observe(err error) {
	calls.WithLabelValues(b.name, b.modelName, result(err)).Inc()
}
