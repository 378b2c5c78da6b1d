package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/cado/pkg/domain"
)

// Store implements ports.NotebookStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Notebook
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Notebook),
	}
}

// Save keeps a deep copy of the notebook, similar to serialization.
func (s *Store) Save(ctx context.Context, nb *domain.Notebook) error {
	cp := nb.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[nb.ID] = cp
	return nil
}

// Load returns a copy so callers can't mutate stored notebooks by pointer.
func (s *Store) Load(ctx context.Context, id string) (*domain.Notebook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nb, ok := s.data[id]
	if !ok {
		return nil, domain.ErrNotebookNotFound
	}
	return nb.Snapshot(), nil
}

// Delete removes the notebook.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored notebook IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
