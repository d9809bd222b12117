package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/arttic/pkg/domain"
)

// Store implements ports.LayoutStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Layout
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Layout),
	}
}

// Save keeps a copy of the layout so later edits by the caller do not leak in.
func (s *Store) Save(ctx context.Context, name string, layout domain.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = layout.Clone()
	return nil
}

// Load returns a copy of the stored layout.
func (s *Store) Load(ctx context.Context, name string) (domain.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	layout, ok := s.data[name]
	if !ok {
		return domain.Layout{}, domain.ErrLayoutNotFound
	}
	return layout.Clone(), nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the saved layout names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
