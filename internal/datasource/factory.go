package datasource

import (
	"sort"
	"strings"
	"sync"

	"domaind/internal/relations"
)

// Factory maps model names (case-insensitively) to their stores.
type Factory struct {
	mu     sync.RWMutex
	stores map[string]Store
}

func NewFactory() *Factory { return &Factory{stores: make(map[string]Store)} }

// Register installs s for modelName, replacing any previous store.
func (f *Factory) Register(modelName string, s Store) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores[strings.ToUpper(modelName)] = s
}

// Repository returns the store for modelName, or nil.
func (f *Factory) Repository(modelName string) Store {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stores[strings.ToUpper(modelName)]
}

// DataSource implements relations.Locator.
func (f *Factory) DataSource(modelName string) relations.DataSource {
	s := f.Repository(modelName)
	if s == nil {
		return nil
	}
	return s
}

// Names returns the upper-cased names that have a store, sorted.
func (f *Factory) Names() []string {
	f.mu.RLock()
	out := make([]string, 0, len(f.stores))
	for k := range f.stores {
		out = append(out, k)
	}
	f.mu.RUnlock()
	sort.Strings(out)
	return out
}
