package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zanngujjar/ai-assistants/internal/models"
)

func newTestStore(t *testing.T) (*JSONStore, string) {
	t.Helper()
	dir := t.TempDir()
	return NewJSONStore(dir, "assistants.json", "honeycombs.json"), dir
}

func TestMissingDocumentsReadAsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	assistants, err := s.LoadAssistants()
	require.NoError(t, err)
	require.Empty(t, assistants)

	honeycombs, err := s.LoadHoneycombs()
	require.NoError(t, err)
	require.Empty(t, honeycombs)
}

func TestAssistantRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)

	assistant := &models.Assistant{
		ID:           "asst_1",
		Name:         "Helper",
		Instructions: "Be helpful.",
		Model:        "gpt-4-turbo-preview",
		Threads: map[string]*models.ThreadRecord{
			"thread_1": {
				Name:       "T1",
				MessageIDs: []string{"msg_1", "msg_2"},
			},
		},
	}
	require.NoError(t, s.PutAssistant(assistant))

	// A fresh store over the same files must read back an equal record.
	reloaded := NewJSONStore(dir, "assistants.json", "honeycombs.json")
	assistants, err := reloaded.LoadAssistants()
	require.NoError(t, err)
	require.Len(t, assistants, 1)
	require.Equal(t, assistant, assistants[0])

	data, err := os.ReadFile(filepath.Join(dir, "assistants.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"messageIds"`)
}

func TestHoneycombRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)

	honeycomb := &models.Honeycomb{
		ID:          "vs_1",
		Name:        "notes",
		Description: "my notes",
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Files: []models.FileEntry{
			{Name: "a.txt", Path: "/notes/a.txt", OpenAIFileID: "file_1"},
			{Name: "b.txt", Path: "/notes/b.txt"},
		},
	}
	require.NoError(t, s.PutHoneycomb(honeycomb))

	honeycombs, err := s.LoadHoneycombs()
	require.NoError(t, err)
	require.Len(t, honeycombs, 1)
	require.Equal(t, honeycomb, honeycombs[0])

	data, err := os.ReadFile(filepath.Join(dir, "honeycombs.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"openai_file_id"`)
	require.Contains(t, string(data), `"created_at"`)
}

func TestPutReplacesByID(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.PutAssistant(&models.Assistant{ID: "asst_1", Name: "Helper"}))
	require.NoError(t, s.PutAssistant(&models.Assistant{ID: "asst_2", Name: "Other"}))
	require.NoError(t, s.PutAssistant(&models.Assistant{ID: "asst_1", Name: "Renamed"}))

	assistants, err := s.LoadAssistants()
	require.NoError(t, err)
	require.Len(t, assistants, 2)
	require.Equal(t, "Renamed", assistants[0].Name)
	require.Equal(t, "Other", assistants[1].Name)
}

func TestDeleteRemovesRecord(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.PutAssistant(&models.Assistant{ID: "asst_1", Name: "Helper"}))
	require.NoError(t, s.PutHoneycomb(&models.Honeycomb{ID: "vs_1", Name: "notes"}))

	require.NoError(t, s.DeleteAssistant("asst_1"))
	require.NoError(t, s.DeleteHoneycomb("vs_1"))

	assistants, err := s.LoadAssistants()
	require.NoError(t, err)
	require.Empty(t, assistants)

	honeycombs, err := s.LoadHoneycombs()
	require.NoError(t, err)
	require.Empty(t, honeycombs)
}

func TestCorruptDocumentIsPersistenceError(t *testing.T) {
	s, dir := newTestStore(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "assistants.json"), []byte("{not json"), 0o644))

	_, err := s.LoadAssistants()
	require.Error(t, err)
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
}
