package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

// JSONStore keeps each collection in one pretty-printed JSON document. A
// missing document reads as an empty collection. Every mutation rewrites
// the whole document.
type JSONStore struct {
	assistantsPath string
	honeycombsPath string
}

func NewJSONStore(dir, assistantsFile, honeycombsFile string) *JSONStore {
	return &JSONStore{
		assistantsPath: filepath.Join(dir, assistantsFile),
		honeycombsPath: filepath.Join(dir, honeycombsFile),
	}
}

func (s *JSONStore) LoadAssistants() ([]*models.Assistant, error) {
	var assistants []*models.Assistant
	if err := readDocument(s.assistantsPath, &assistants); err != nil {
		return nil, err
	}
	return assistants, nil
}

func (s *JSONStore) PutAssistant(a *models.Assistant) error {
	assistants, err := s.LoadAssistants()
	if err != nil {
		return err
	}
	assistants = putByID(assistants, a, func(existing *models.Assistant) bool {
		return existing.ID == a.ID
	})
	return writeDocument(s.assistantsPath, assistants)
}

func (s *JSONStore) DeleteAssistant(id string) error {
	assistants, err := s.LoadAssistants()
	if err != nil {
		return err
	}
	kept := assistants[:0]
	for _, a := range assistants {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	return writeDocument(s.assistantsPath, kept)
}

func (s *JSONStore) LoadHoneycombs() ([]*models.Honeycomb, error) {
	var honeycombs []*models.Honeycomb
	if err := readDocument(s.honeycombsPath, &honeycombs); err != nil {
		return nil, err
	}
	return honeycombs, nil
}

func (s *JSONStore) PutHoneycomb(h *models.Honeycomb) error {
	honeycombs, err := s.LoadHoneycombs()
	if err != nil {
		return err
	}
	honeycombs = putByID(honeycombs, h, func(existing *models.Honeycomb) bool {
		return existing.ID == h.ID
	})
	return writeDocument(s.honeycombsPath, honeycombs)
}

func (s *JSONStore) DeleteHoneycomb(id string) error {
	honeycombs, err := s.LoadHoneycombs()
	if err != nil {
		return err
	}
	kept := honeycombs[:0]
	for _, h := range honeycombs {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	return writeDocument(s.honeycombsPath, kept)
}

func (s *JSONStore) Close() error {
	// Nothing held open between operations.
	return nil
}

func putByID[T any](records []T, record T, match func(T) bool) []T {
	for i, existing := range records {
		if match(existing) {
			records[i] = record
			return records
		}
	}
	return append(records, record)
}

func readDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &PersistenceError{Op: "read " + path, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &PersistenceError{Op: "decode " + path, Err: err}
	}
	return nil
}

func writeDocument(path string, records any) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode " + path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &PersistenceError{Op: "write " + path, Err: err}
	}
	return nil
}
