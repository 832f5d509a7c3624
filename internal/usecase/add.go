package usecase

import (
	"context"
	"fmt"

	"domaind/internal/model"
)

// AddModel builds a model from args, stores it and returns it.
type AddModel func(ctx context.Context, args model.Fields) (*model.Model, error)

// NewAddModel returns the add use case for cfg.ModelName. It publishes CREATE
// events carrying {created}.
func NewAddModel(cfg Config) (AddModel, error) {
	b, err := newBase("add", model.Create, cfg)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, args model.Fields) (created *model.Model, err error) {
		defer func() { b.observe(err) }()
		ctx = b.withLogger(ctx)

		created, err = b.reg.CreateModel(ctx, b.modelName, args)
		if err != nil {
			return nil, err
		}
		if !model.Validate(ctx, created) {
			return nil, model.ErrInvalid(created)
		}
		event, err := b.reg.CreateEvent(ctx, model.Create, b.modelName, model.Fields{"created": created})
		if err != nil {
			return nil, err
		}
		if err := b.repo.Save(ctx, created.ID(), created); err != nil {
			return nil, fmt.Errorf("save %s %s: %w", b.modelName, created.ID(), err)
		}
		if err := b.publish(ctx, event); err != nil {
			return created, err
		}
		return created, nil
	}, nil
}
