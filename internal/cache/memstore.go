package cache

import (
	"sync"

	"github.com/lotas/arxivgruppen/internal/types"
)

// MemStore is an in-memory Store. It backs the cache when the SQLite
// database cannot be opened, so the tool still works for the session.
type MemStore struct {
	mu     sync.Mutex
	papers map[string]*types.Paper
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{papers: make(map[string]*types.Paper)}
}

func (s *MemStore) Get(id string) (*types.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.papers[id], nil
}

func (s *MemStore) Put(p *types.Paper) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.papers[p.ID] = p
	return nil
}

func (s *MemStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.papers, id)
	return nil
}

func (s *MemStore) All() ([]*types.Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*types.Paper, 0, len(s.papers))
	for _, p := range s.papers {
		result = append(result, p)
	}
	return result, nil
}
