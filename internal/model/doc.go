// Package model provides the immutable Model and Event values and the pipeline
// that constructs them. It is structured into small files by concern:
//
//   - fields.go: Fields and the explicit Merge used for every override.
//   - model.go: Model, its accessors, With and Restore.
//   - event.go: EventType, EventName and Event.
//   - pipeline.go: generic Stage/Pipe and the Pipeline building models and events.
//   - validate.go: Validate, which downgrades validator failures to false.
//   - ids.go: default identifier and timestamp sources.
//   - errors.go: error kinds and predicates (IsArgument, IsLookup, ...).
//
// Models and events are only ever built by a Pipeline (usually through the
// registry) or rebuilt from stored records with Restore. Neither exposes
// setters; a change to a model produces a new Model.
package model
