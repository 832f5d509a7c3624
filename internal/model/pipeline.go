package model

import "context"

// Stage is one step of a construction pipeline. It receives the previous
// stage's output and returns the value handed to the next one.
type Stage[T any] func(ctx context.Context, in T) (T, error)

// Pipe composes stages into a single Stage running them strictly in order.
// The first error stops the pipe.
func Pipe[T any](stages ...Stage[T]) Stage[T] {
	return func(ctx context.Context, in T) (T, error) {
		cur := in
		for _, st := range stages {
			if err := ctx.Err(); err != nil {
				var zero T
				return zero, err
			}
			next, err := st(ctx, cur)
			if err != nil {
				var zero T
				return zero, err
			}
			cur = next
		}
		return cur, nil
	}
}

// Options describe a single model construction.
type Options struct {
	Factory   Factory
	Args      Fields
	ModelName string
	IsValid   Validator
}

// EventOptions describe a single event construction.
type EventOptions struct {
	Factory   Factory
	Args      Fields
	Type      EventType
	ModelName string
}

// Pipeline builds models and events: invoke the factory, stamp the creation
// time, assign the identifier.
type Pipeline struct {
	newID IDGenerator
	now   Clock
	model Stage[*Model]
	event Stage[*Event]
}

// NewPipeline returns a Pipeline using ids and clock. Nil arguments select
// NewID and Now.
func NewPipeline(ids IDGenerator, clock Clock) *Pipeline {
	if ids == nil {
		ids = NewID
	}
	if clock == nil {
		clock = Now
	}
	p := &Pipeline{newID: ids, now: clock}
	p.model = Pipe(p.stampModel, p.identifyModel)
	p.event = Pipe(p.stampEvent, p.identifyEvent)
	return p
}

// Create runs the model pipeline for opts.
func (p *Pipeline) Create(ctx context.Context, opts Options) (*Model, error) {
	if opts.Factory == nil {
		return nil, ErrArgument("factory missing")
	}
	fields, err := opts.Factory(ctx, opts.Args.Clone())
	if err != nil {
		return nil, ErrFactory(opts.ModelName, err)
	}
	isValid := opts.IsValid
	if isValid == nil {
		isValid = AlwaysValid
	}
	m := &Model{name: opts.ModelName, fields: withoutReserved(fields), isValid: isValid}
	return p.model(ctx, m)
}

// CreateEvent runs the event pipeline for opts.
func (p *Pipeline) CreateEvent(ctx context.Context, opts EventOptions) (*Event, error) {
	if opts.Factory == nil {
		return nil, ErrArgument("factory missing")
	}
	et, err := ParseEventType(opts.Type)
	if err != nil {
		return nil, err
	}
	name, err := EventName(et, opts.ModelName)
	if err != nil {
		return nil, err
	}
	payload, err := opts.Factory(ctx, opts.Args.Clone())
	if err != nil {
		return nil, ErrFactory(name, err)
	}
	e := &Event{
		eventType: et,
		modelName: opts.ModelName,
		eventName: name,
		payload:   payload.Clone(),
	}
	return p.event(ctx, e)
}

func (p *Pipeline) stampModel(_ context.Context, in *Model) (*Model, error) {
	out := *in
	out.createTime = p.now()
	return &out, nil
}

func (p *Pipeline) identifyModel(_ context.Context, in *Model) (*Model, error) {
	out := *in
	out.id = p.newID()
	return &out, nil
}

func (p *Pipeline) stampEvent(_ context.Context, in *Event) (*Event, error) {
	out := *in
	out.time = p.now()
	return &out, nil
}

func (p *Pipeline) identifyEvent(_ context.Context, in *Event) (*Event, error) {
	out := *in
	out.id = p.newID()
	return &out, nil
}
