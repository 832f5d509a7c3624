package model

import (
	"encoding/json"
	"strings"
)

// EventType is the kind of state change an event records.
type EventType string

const (
	Create EventType = "CREATE"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
)

// EventTypes lists every supported event type.
var EventTypes = []EventType{Create, Update, Delete}

// ParseEventType normalizes t to upper case and checks it is supported.
func ParseEventType(t EventType) (EventType, error) {
	up := EventType(strings.ToUpper(string(t)))
	switch up {
	case Create, Update, Delete:
		return up, nil
	}
	return "", ErrArgument("eventType missing or invalid: " + string(t))
}

// NormalizeName returns the lookup key for a model name.
func NormalizeName(modelName string) (string, error) {
	if modelName == "" {
		return "", ErrArgument("modelName missing or invalid")
	}
	return strings.ToUpper(modelName), nil
}

// EventName derives the name under which events of type t for modelName are
// published: the upper-cased type followed by the upper-cased model name.
func EventName(t EventType, modelName string) (string, error) {
	et, err := ParseEventType(t)
	if err != nil {
		return "", err
	}
	name, err := NormalizeName(modelName)
	if err != nil {
		return "", err
	}
	return string(et) + name, nil
}

// Event is an immutable record of a state change.
type Event struct {
	id        string
	eventType EventType
	modelName string
	eventName string
	time      string
	payload   Fields
}

func (e *Event) ID() string        { return e.id }
func (e *Event) Type() EventType   { return e.eventType }
func (e *Event) ModelName() string { return e.modelName }
func (e *Event) Name() string      { return e.eventName }
func (e *Event) Time() string      { return e.time }
func (e *Event) Payload() Fields   { return e.payload.Clone() }

// Get returns a single payload value.
func (e *Event) Get(key string) (any, bool) {
	v, ok := e.payload[key]
	return v, ok
}

type eventJSON struct {
	ID        string    `json:"id"`
	EventType EventType `json:"eventType"`
	ModelName string    `json:"modelName"`
	EventName string    `json:"eventName"`
	Time      string    `json:"eventTime"`
	Payload   Fields    `json:"payload"`
}

func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		ID:        e.id,
		EventType: e.eventType,
		ModelName: e.modelName,
		EventName: e.eventName,
		Time:      e.time,
		Payload:   e.payload,
	})
}
