package memory

import (
	"context"
	"sync"

	"github.com/aretw0/historyviewer/pkg/domain"
)

// Store implements ports.SelectionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.CompareSelection
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.CompareSelection),
	}
}

// Save persists the selection in memory.
func (s *Store) Save(ctx context.Context, sessionID string, sel *domain.CompareSelection) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := sel.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = copied
	return nil
}

// Load retrieves the selection from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.CompareSelection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	// Copy on read so callers can't reach the stored versions by pointer
	ret := sel.Clone()
	return &ret, nil
}

// Delete removes the selection.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
