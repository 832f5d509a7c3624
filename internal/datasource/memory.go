package datasource

import (
	"context"
	"sync"

	"domaind/internal/model"
)

// Store is a repository for models of one kind.
type Store interface {
	List(ctx context.Context, all bool) ([]*model.Model, error)
	Find(ctx context.Context, id string) (*model.Model, error)
	Save(ctx context.Context, id string, m *model.Model) error
	Delete(ctx context.Context, id string) error
}

// Memory keeps models in insertion order. Saving an existing id replaces the
// model in place. The zero value is ready to use.
type Memory struct {
	// PageSize caps List(ctx, false). Zero means no cap.
	PageSize int

	mu    sync.RWMutex
	order []string
	byID  map[string]*model.Model
}

func NewMemory() *Memory { return &Memory{} }

func (s *Memory) Find(ctx context.Context, id string) (*model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id], nil
}

func (s *Memory) Save(ctx context.Context, id string, m *model.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return model.ErrArgument("id missing")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byID == nil {
		s.byID = make(map[string]*model.Model)
	}
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = m
	return nil
}

func (s *Memory) List(ctx context.Context, all bool) ([]*model.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if !all && s.PageSize > 0 && s.PageSize < n {
		n = s.PageSize
	}
	out := make([]*model.Model, 0, n)
	for _, id := range s.order[:n] {
		out = append(out, s.byID[id])
	}
	return out, nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (s *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored models.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
