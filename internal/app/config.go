package app

import (
	"github.com/rs/zerolog"

	"domaind/internal/datasource"
	"domaind/internal/pubsub"
	"domaind/internal/registry"
	"domaind/internal/relations"
)

// Config wires an App. Only Registry is required.
type Config struct {
	Registry *registry.Registry
	// Stores holds one store per model name. Registered models without a
	// store get an in-memory one.
	Stores *datasource.Factory
	// Channel defaults to a fresh Observer.
	Channel *pubsub.Observer
	// Outbox defaults to a fresh MemoryOutbox.
	Outbox *pubsub.MemoryOutbox
	// Relations per model name, keyed by relation name.
	Relations map[string]map[string]relations.Descriptor
	// Handlers are subscribed to every event the use cases publish.
	Handlers []pubsub.Handler
	Logger   *zerolog.Logger
}
