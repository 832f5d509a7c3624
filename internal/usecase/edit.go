package usecase

import (
	"context"
	"fmt"

	"domaind/internal/model"
)

// EditModel applies changes to the stored model id and returns the updated
// model.
type EditModel func(ctx context.Context, id string, changes model.Fields) (*model.Model, error)

// NewEditModel returns the edit use case for cfg.ModelName. It publishes
// UPDATE events carrying {updated, changes}.
//
// Steps, in order: load, merge, validate, build the event, save, publish. A
// missing id or an invalid result stops before anything is saved.
func NewEditModel(cfg Config) (EditModel, error) {
	b, err := newBase("edit", model.Update, cfg)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, id string, changes model.Fields) (updated *model.Model, err error) {
		defer func() { b.observe(err) }()
		ctx = b.withLogger(ctx)

		current, err := b.find(ctx, id)
		if err != nil {
			return nil, err
		}
		updated = current.With(changes)
		if !model.Validate(ctx, updated) {
			return nil, model.ErrInvalid(updated)
		}
		event, err := b.reg.CreateEvent(ctx, model.Update, b.modelName, model.Fields{
			"updated": updated,
			"changes": changes.Clone(),
		})
		if err != nil {
			return nil, err
		}
		if err := b.repo.Save(ctx, id, updated); err != nil {
			return nil, fmt.Errorf("save %s %s: %w", b.modelName, id, err)
		}
		if err := b.publish(ctx, event); err != nil {
			return updated, err
		}
		return updated, nil
	}, nil
}
