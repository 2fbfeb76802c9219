package models

import "time"

// Assistant mirrors one remote assistant plus the local record of its
// conversation threads. The JSON shape is the on-disk assistants document.
type Assistant struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Instructions string                   `json:"instructions"`
	Model        string                   `json:"model"`
	Threads      map[string]*ThreadRecord `json:"threads,omitempty"`
}

// Thread returns the record for threadID, creating it if absent.
func (a *Assistant) Thread(threadID string) *ThreadRecord {
	if a.Threads == nil {
		a.Threads = make(map[string]*ThreadRecord)
	}
	rec, ok := a.Threads[threadID]
	if !ok {
		rec = &ThreadRecord{MessageIDs: []string{}}
		a.Threads[threadID] = rec
	}
	if rec.MessageIDs == nil {
		rec.MessageIDs = []string{}
	}
	return rec
}

// ThreadRecord is the local mirror of one remote conversation thread.
// MessageIDs is append-only and keeps the remote creation order; it is
// always a subsequence of the remote thread's full history.
type ThreadRecord struct {
	Name       string   `json:"name,omitempty"`
	MessageIDs []string `json:"messageIds"`
}

// HasMessage reports whether id has already been observed for this thread.
func (t *ThreadRecord) HasMessage(id string) bool {
	for _, existing := range t.MessageIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// Honeycomb mirrors one remote vector store and the files fed into it.
type Honeycomb struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	Files       []FileEntry `json:"files"`
}

// FileEntry records one file's local path and, when registration with the
// remote service succeeded, its remote file id.
type FileEntry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	OpenAIFileID string `json:"openai_file_id,omitempty"`
}
