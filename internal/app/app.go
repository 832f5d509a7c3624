// Package app composes the registry, the stores, the event channel and the
// per-model use cases into the service behind the HTTP API.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"domaind/internal/datasource"
	"domaind/internal/model"
	"domaind/internal/pubsub"
	"domaind/internal/registry"
	"domaind/internal/relations"
	"domaind/internal/usecase"
)

type useCases struct {
	add    usecase.AddModel
	edit   usecase.EditModel
	remove usecase.RemoveModel
}

// App serves every model registered at construction time. Models registered
// later are not served.
type App struct {
	reg       *registry.Registry
	stores    *datasource.Factory
	channel   *pubsub.Observer
	outbox    *pubsub.MemoryOutbox
	relations map[string]map[string]relations.Descriptor
	cases     map[string]useCases
	log       zerolog.Logger
}

// NewWithConfig builds the use cases of every registered model.
func NewWithConfig(cfg Config) (*App, error) {
	if cfg.Registry == nil {
		return nil, model.ErrArgument("app: registry missing")
	}
	a := &App{
		reg:       cfg.Registry,
		stores:    cfg.Stores,
		channel:   cfg.Channel,
		outbox:    cfg.Outbox,
		relations: make(map[string]map[string]relations.Descriptor),
		cases:     make(map[string]useCases),
		log:       zerolog.Nop(),
	}
	if cfg.Logger != nil {
		a.log = cfg.Logger.With().Str("component", "app").Logger()
	}
	if a.stores == nil {
		a.stores = datasource.NewFactory()
	}
	if a.channel == nil {
		a.channel = pubsub.NewObserver()
	}
	if a.outbox == nil {
		a.outbox = pubsub.NewMemoryOutbox()
	}
	for name, rels := range cfg.Relations {
		a.relations[strings.ToUpper(name)] = rels
	}
	for _, name := range a.reg.ModelNames() {
		store := a.stores.Repository(name)
		if store == nil {
			store = datasource.NewMemory()
			a.stores.Register(name, store)
		}
		ucfg := usecase.Config{
			ModelName:  name,
			Registry:   a.reg,
			Repository: store,
			Channel:    a.channel,
			Handlers:   cfg.Handlers,
			Outbox:     a.outbox,
			Logger:     cfg.Logger,
		}
		var uc useCases
		var err error
		if uc.add, err = usecase.NewAddModel(ucfg); err != nil {
			return nil, err
		}
		if uc.edit, err = usecase.NewEditModel(ucfg); err != nil {
			return nil, err
		}
		if uc.remove, err = usecase.NewRemoveModel(ucfg); err != nil {
			return nil, err
		}
		a.cases[name] = uc
	}
	return a, nil
}

func (a *App) lookup(modelName string) (useCases, datasource.Store, error) {
	key, err := model.NormalizeName(modelName)
	if err != nil {
		return useCases{}, nil, model.ErrUnregisteredModel(modelName)
	}
	uc, ok := a.cases[key]
	if !ok {
		return useCases{}, nil, model.ErrUnregisteredModel(key)
	}
	return uc, a.stores.Repository(key), nil
}

// ListModels returns the served model names.
func (a *App) ListModels() []string { return a.reg.ModelNames() }

// ListRecords returns stored models of modelName. all=false lets the store
// return a bounded page.
func (a *App) ListRecords(ctx context.Context, modelName string, all bool) ([]*model.Model, error) {
	_, store, err := a.lookup(modelName)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, all)
}

func (a *App) CreateModel(ctx context.Context, modelName string, args model.Fields) (*model.Model, error) {
	uc, _, err := a.lookup(modelName)
	if err != nil {
		return nil, err
	}
	return uc.add(ctx, args)
}

func (a *App) GetModel(ctx context.Context, modelName, id string) (*model.Model, error) {
	_, store, err := a.lookup(modelName)
	if err != nil {
		return nil, err
	}
	m, err := store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, model.ErrNotFound(id)
	}
	return m, nil
}

func (a *App) EditModel(ctx context.Context, modelName, id string, changes model.Fields) (*model.Model, error) {
	uc, _, err := a.lookup(modelName)
	if err != nil {
		return nil, err
	}
	return uc.edit(ctx, id, changes)
}

func (a *App) DeleteModel(ctx context.Context, modelName, id string) (*model.Model, error) {
	uc, _, err := a.lookup(modelName)
	if err != nil {
		return nil, err
	}
	return uc.remove(ctx, id)
}

// Related resolves one declared relation of the stored model id.
func (a *App) Related(ctx context.Context, modelName, id, relation string) ([]*model.Model, error) {
	m, err := a.GetModel(ctx, modelName, id)
	if err != nil {
		return nil, err
	}
	rels := a.relations[strings.ToUpper(modelName)]
	if _, ok := rels[relation]; !ok {
		return nil, model.ErrArgument("no such relation: " + relation)
	}
	return relations.Make(m, rels, a.stores, a.log)[relation](ctx)
}

// Subscribe attaches h to events published under eventName.
func (a *App) Subscribe(eventName string, h pubsub.Handler) (func(), error) {
	if strings.TrimSpace(eventName) == "" {
		return nil, model.ErrArgument("event name missing")
	}
	return a.channel.On(strings.ToUpper(eventName), h), nil
}

// Redeliver retries every event whose publication failed.
func (a *App) Redeliver(ctx context.Context) error { return a.outbox.Redeliver(ctx, a.channel) }

// DefaultRedeliverInterval is the RunRedelivery period used for a
// non-positive interval.
const DefaultRedeliverInterval = 30 * time.Second

// RunRedelivery retries outboxed events every interval until ctx is done.
func (a *App) RunRedelivery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRedeliverInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := a.PendingEvents()
			if n == 0 {
				continue
			}
			if err := a.Redeliver(ctx); err != nil {
				a.log.Warn().Err(err).Int("pending", a.PendingEvents()).Msg("event redelivery failed")
				continue
			}
			a.log.Info().Int("delivered", n).Msg("outboxed events redelivered")
		}
	}
}

// PendingEvents returns the number of events waiting for redelivery.
func (a *App) PendingEvents() int { return len(a.outbox.Pending()) }
