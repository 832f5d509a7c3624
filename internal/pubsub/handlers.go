package pubsub

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"domaind/internal/model"
)

// LogHandler returns a Handler that logs each event at info level.
func LogHandler(log zerolog.Logger) Handler {
	return func(_ context.Context, e *model.Event) error {
		log.Info().
			Str("event", e.Name()).
			Str("event_id", e.ID()).
			Str("model", e.ModelName()).
			Str("time", e.Time()).
			Msg("event published")
		return nil
	}
}

// Recorder keeps every event it handles. It is meant for tests and inspection.
type Recorder struct {
	mu     sync.Mutex
	events []*model.Event
}

func NewRecorder() *Recorder { return &Recorder{} }

// Handle implements Handler.
func (r *Recorder) Handle(_ context.Context, e *model.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []*model.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Event, len(r.events))
	copy(out, r.events)
	return out
}
