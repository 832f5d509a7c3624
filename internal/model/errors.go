package model

import (
	"errors"
	"fmt"
)

// argumentError signals malformed registration or naming arguments.
type argumentError struct{ msg string }

func (e argumentError) Error() string { return "invalid argument: " + e.msg }

// ErrArgument constructs an argumentError.
func ErrArgument(msg string) error { return argumentError{msg: msg} }

// IsArgument reports whether err is (or wraps) an argument error.
func IsArgument(err error) bool {
	var e argumentError
	return errors.As(err, &e)
}

// lookupError signals a request for an unregistered model or model event.
type lookupError struct {
	what string
	key  string
}

func (e lookupError) Error() string { return e.what + ": " + e.key }

// ErrUnregisteredModel is returned when no factory exists for the model name.
func ErrUnregisteredModel(modelName string) error {
	return lookupError{what: "unregistered model", key: modelName}
}

// ErrUnregisteredEvent is returned when no factory exists for the event type and model pair.
func ErrUnregisteredEvent(t EventType, modelName string) error {
	return lookupError{what: "unregistered model event", key: string(t) + " " + modelName}
}

// IsLookup reports whether err indicates an unregistered model or model event.
func IsLookup(err error) bool {
	var e lookupError
	return errors.As(err, &e)
}

// factoryError signals that a registered factory rejected its arguments.
type factoryError struct {
	name  string
	cause error
}

func (e factoryError) Error() string { return e.name + " factory: " + e.cause.Error() }

func (e factoryError) Unwrap() error { return e.cause }

// ErrFactory wraps a factory failure for the model or event name.
func ErrFactory(name string, cause error) error {
	return factoryError{name: name, cause: cause}
}

// IsFactory reports whether err came from a factory rejecting its arguments.
func IsFactory(err error) bool {
	var e factoryError
	return errors.As(err, &e)
}

// notFoundError signals that the target of an operation does not exist.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "no such id: " + e.id }

// ErrNotFound constructs a notFoundError for id.
func ErrNotFound(id string) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates a missing id.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// validationError signals that a model failed its own validity predicate.
type validationError struct {
	modelName string
	id        string
}

func (e validationError) Error() string {
	return fmt.Sprintf("invalid model: %s %s", e.modelName, e.id)
}

// ErrInvalid constructs a validationError for m.
func ErrInvalid(m *Model) error {
	if m == nil {
		return validationError{}
	}
	return validationError{modelName: m.Name(), id: m.ID()}
}

// IsValidation reports whether err indicates a rejected model.
func IsValidation(err error) bool {
	var e validationError
	return errors.As(err, &e)
}

// publishError signals that a change was persisted but its event could not be
// delivered to every subscriber.
type publishError struct {
	eventName string
	cause     error
}

func (e publishError) Error() string {
	return "publish " + e.eventName + ": " + e.cause.Error()
}

func (e publishError) Unwrap() error { return e.cause }

// ErrPublish wraps cause as a publishError for eventName.
func ErrPublish(eventName string, cause error) error {
	return publishError{eventName: eventName, cause: cause}
}

// IsPublish reports whether err indicates a failed event delivery.
func IsPublish(err error) bool {
	var e publishError
	return errors.As(err, &e)
}
