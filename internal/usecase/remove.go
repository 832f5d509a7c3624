package usecase

import (
	"context"
	"fmt"

	"domaind/internal/model"
)

// RemoveModel deletes the stored model id and returns it.
type RemoveModel func(ctx context.Context, id string) (*model.Model, error)

// NewRemoveModel returns the remove use case for cfg.ModelName. The repository
// must also implement Deleter. It publishes DELETE events carrying {deleted}.
func NewRemoveModel(cfg Config) (RemoveModel, error) {
	del, ok := cfg.Repository.(Deleter)
	if !ok {
		return nil, model.ErrArgument("remove: repository cannot delete")
	}
	b, err := newBase("remove", model.Delete, cfg)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, id string) (deleted *model.Model, err error) {
		defer func() { b.observe(err) }()
		ctx = b.withLogger(ctx)

		deleted, err = b.find(ctx, id)
		if err != nil {
			return nil, err
		}
		event, err := b.reg.CreateEvent(ctx, model.Delete, b.modelName, model.Fields{"deleted": deleted})
		if err != nil {
			return nil, err
		}
		if err := del.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("delete %s %s: %w", b.modelName, id, err)
		}
		if err := b.publish(ctx, event); err != nil {
			return deleted, err
		}
		return deleted, nil
	}, nil
}
