// Package registry maps model names to their factories and validators and
// (event type, model name) pairs to event factories. Construction goes through
// the model pipeline so every model and event gets a creation time and an id.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"domaind/internal/model"
)

type modelEntry struct {
	factory model.Factory
	isValid model.Validator
}

type eventKey struct {
	eventType model.EventType
	modelName string
}

// Registry is safe for concurrent use. Registration normally happens during
// startup and lookups afterwards; reads never block each other.
type Registry struct {
	mu       sync.RWMutex
	models   map[string]modelEntry
	events   map[eventKey]model.Factory
	pipeline *model.Pipeline
	log      zerolog.Logger
}

// Config holds optional collaborators. Nil fields select the defaults
// (random UUIDs, UTC wall clock, a disabled logger).
type Config struct {
	IDs    model.IDGenerator
	Clock  model.Clock
	Logger *zerolog.Logger
}

// New returns an empty Registry with default collaborators.
func New() *Registry { return NewWithConfig(Config{}) }

// NewWithConfig returns an empty Registry using cfg.
func NewWithConfig(cfg Config) *Registry {
	r := &Registry{
		models:   make(map[string]modelEntry),
		events:   make(map[eventKey]model.Factory),
		pipeline: model.NewPipeline(cfg.IDs, cfg.Clock),
		log:      zerolog.Nop(),
	}
	if cfg.Logger != nil {
		r.log = cfg.Logger.With().Str("component", "registry").Logger()
	}
	return r
}

// RegisterModel records factory and isValid under the upper-cased name. An
// empty name or a nil factory is ignored, as is any name already registered.
// A nil isValid means the model is always valid.
func (r *Registry) RegisterModel(name string, factory model.Factory, isValid model.Validator) {
	key, err := model.NormalizeName(name)
	if err != nil || factory == nil {
		r.log.Debug().Str("model", name).Msg("ignoring incomplete model registration")
		return
	}
	if isValid == nil {
		isValid = model.AlwaysValid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.models[key]; ok {
		r.log.Debug().Str("model", key).Msg("model already registered")
		return
	}
	r.models[key] = modelEntry{factory: factory, isValid: isValid}
}

// RegisterEvent records factory for events of eventType about modelName. The
// event type is matched case-insensitively. A nil factory is ignored and the
// first registration of a pair wins.
func (r *Registry) RegisterEvent(eventType model.EventType, modelName string, factory model.Factory) error {
	key, err := r.eventKey(eventType, modelName)
	if err != nil {
		return err
	}
	if factory == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[key]; ok {
		r.log.Debug().Str("event", string(key.eventType)+key.modelName).Msg("model event already registered")
		return nil
	}
	r.events[key] = factory
	return nil
}

// CreateModel builds a new model of the named kind from args. The model is
// stamped with the upper-cased name. An unknown or empty name is a lookup
// error.
func (r *Registry) CreateModel(ctx context.Context, name string, args model.Fields) (*model.Model, error) {
	key, err := model.NormalizeName(name)
	if err != nil {
		// no model can be registered under an empty name
		lookupFailures.WithLabelValues("model").Inc()
		return nil, model.ErrUnregisteredModel(name)
	}
	r.mu.RLock()
	entry, ok := r.models[key]
	r.mu.RUnlock()
	if !ok {
		lookupFailures.WithLabelValues("model").Inc()
		return nil, model.ErrUnregisteredModel(key)
	}
	m, err := r.pipeline.Create(ctx, model.Options{
		Factory:   entry.factory,
		Args:      args,
		ModelName: key,
		IsValid:   entry.isValid,
	})
	if err != nil {
		return nil, err
	}
	modelsCreated.WithLabelValues(key).Inc()
	return m, nil
}

// CreateEvent builds an event of eventType about modelName from args.
func (r *Registry) CreateEvent(ctx context.Context, eventType model.EventType, modelName string, args model.Fields) (*model.Event, error) {
	key, err := r.eventKey(eventType, modelName)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	factory, ok := r.events[key]
	r.mu.RUnlock()
	if !ok {
		lookupFailures.WithLabelValues("event").Inc()
		return nil, model.ErrUnregisteredEvent(key.eventType, key.modelName)
	}
	e, err := r.pipeline.CreateEvent(ctx, model.EventOptions{
		Factory:   factory,
		Args:      args,
		Type:      key.eventType,
		ModelName: key.modelName,
	})
	if err != nil {
		return nil, err
	}
	eventsCreated.WithLabelValues(e.Name()).Inc()
	return e, nil
}

// EventName returns the name events of eventType about modelName are
// published under. It does not consult registrations.
func (r *Registry) EventName(eventType model.EventType, modelName string) (string, error) {
	return model.EventName(eventType, modelName)
}

// Restore rebuilds a stored record as a model carrying its registered
// validator. The model name is read from the record.
func (r *Registry) Restore(record model.Fields) (*model.Model, error) {
	name, _ := record.String(model.KeyModelName)
	key, err := model.NormalizeName(name)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	entry, ok := r.models[key]
	r.mu.RUnlock()
	if !ok {
		lookupFailures.WithLabelValues("model").Inc()
		return nil, model.ErrUnregisteredModel(key)
	}
	return model.Restore(record, entry.isValid), nil
}

// ModelNames returns the registered (upper-cased) model names in sorted order.
func (r *Registry) ModelNames() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.models))
	for k := range r.models {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) eventKey(eventType model.EventType, modelName string) (eventKey, error) {
	et, err := model.ParseEventType(eventType)
	if err != nil {
		return eventKey{}, err
	}
	name, err := model.NormalizeName(modelName)
	if err != nil {
		return eventKey{}, err
	}
	return eventKey{eventType: et, modelName: name}, nil
}
