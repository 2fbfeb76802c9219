package store

import (
	"fmt"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

// Store persists the assistant and honeycomb collections between process
// invocations. Writes are last-writer-wins: there is no concurrent-
// modification check, which is acceptable for a single-user single-process
// CLI and is a documented correctness boundary, not something backends try
// to fix quietly.
type Store interface {
	LoadAssistants() ([]*models.Assistant, error)
	// PutAssistant inserts the record or replaces the one with the same ID.
	PutAssistant(a *models.Assistant) error
	DeleteAssistant(id string) error

	LoadHoneycombs() ([]*models.Honeycomb, error)
	PutHoneycomb(h *models.Honeycomb) error
	DeleteHoneycomb(id string) error

	Close() error
}

// PersistenceError marks a local read/write failure, as opposed to a remote
// service failure. Callers that just appended remote state must surface it:
// a swallowed write failure desynchronizes the local mirror.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
