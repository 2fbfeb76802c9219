package store

import (
	"errors"
	"sync"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

var errPutRefused = errors.New("puts disabled")

// MemoryStore is a map-backed Store used in tests and as a throwaway
// backend. Records are stored as-is; callers share pointers with the store
// the same way they share them with the JSON document between writes.
type MemoryStore struct {
	mu         sync.RWMutex
	assistants map[string]*models.Assistant
	honeycombs map[string]*models.Honeycomb
	order      []string
	combOrder  []string

	// FailPuts makes every Put return a PersistenceError, for tests that
	// exercise write-failure handling.
	FailPuts bool

	// PutCount counts successful Put calls across both collections.
	PutCount int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assistants: make(map[string]*models.Assistant),
		honeycombs: make(map[string]*models.Honeycomb),
	}
}

func (s *MemoryStore) LoadAssistants() ([]*models.Assistant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Assistant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.assistants[id])
	}
	return out, nil
}

func (s *MemoryStore) PutAssistant(a *models.Assistant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPuts {
		return &PersistenceError{Op: "put assistant", Err: errPutRefused}
	}
	if _, exists := s.assistants[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.assistants[a.ID] = a
	s.PutCount++
	return nil
}

func (s *MemoryStore) DeleteAssistant(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.assistants, id)
	s.order = removeID(s.order, id)
	return nil
}

func (s *MemoryStore) LoadHoneycombs() ([]*models.Honeycomb, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Honeycomb, 0, len(s.combOrder))
	for _, id := range s.combOrder {
		out = append(out, s.honeycombs[id])
	}
	return out, nil
}

func (s *MemoryStore) PutHoneycomb(h *models.Honeycomb) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPuts {
		return &PersistenceError{Op: "put honeycomb", Err: errPutRefused}
	}
	if _, exists := s.honeycombs[h.ID]; !exists {
		s.combOrder = append(s.combOrder, h.ID)
	}
	s.honeycombs[h.ID] = h
	s.PutCount++
	return nil
}

func (s *MemoryStore) DeleteHoneycomb(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.honeycombs, id)
	s.combOrder = removeID(s.combOrder, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func removeID(ids []string, id string) []string {
	kept := ids[:0]
	for _, existing := range ids {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	return kept
}
