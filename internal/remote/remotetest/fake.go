// Package remotetest provides a scripted in-memory Service for tests.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/zanngujjar/ai-assistants/internal/remote"
)

// Fake implements remote.Service against in-memory state. Run and batch
// status sequences are scripted: each Retrieve call consumes the next
// element, and an exhausted script keeps returning its last element.
type Fake struct {
	mu sync.Mutex

	assistants map[string]remote.Assistant
	threads    map[string][]remote.Message
	stores     map[string][]string

	RunStatuses   []remote.RunStatus
	BatchStatuses []remote.BatchStatus

	// FailUploads maps file names whose registration should fail.
	FailUploads map[string]bool
	// DeleteVectorStoreErr, when set, fails every vector store deletion.
	DeleteVectorStoreErr error
	// CreateMessageErr, when set, fails every message append.
	CreateMessageErr error

	RetrieveRunCalls   int
	RetrieveBatchCalls int
	ListMessagesCalls  int

	Uploads       []string
	BatchFileIDs  []string
	DeletedStores []string
}

func New() *Fake {
	return &Fake{
		assistants:  make(map[string]remote.Assistant),
		threads:     make(map[string][]remote.Message),
		stores:      make(map[string][]string),
		FailUploads: make(map[string]bool),
	}
}

func mintID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

// AddRemoteMessage appends a message directly to the remote thread,
// bypassing CreateMessage, the way a completed run delivers a reply.
func (f *Fake) AddRemoteMessage(threadID, role, content string) remote.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	msg := remote.Message{
		ID:        mintID("msg"),
		Role:      role,
		Content:   content,
		CreatedAt: int64(len(f.threads[threadID]) + 1),
	}
	f.threads[threadID] = append(f.threads[threadID], msg)
	return msg
}

// ThreadMessages returns the remote thread contents in creation order.
func (f *Fake) ThreadMessages(threadID string) []remote.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.Message(nil), f.threads[threadID]...)
}

// StoreFileIDs returns the file ids a vector store was created with.
func (f *Fake) StoreFileIDs(storeID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.stores[storeID]...)
}

func (f *Fake) CreateAssistant(_ context.Context, name, instructions, model string) (remote.Assistant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	a := remote.Assistant{
		ID:           mintID("asst"),
		Name:         name,
		Instructions: instructions,
		Model:        model,
	}
	f.assistants[a.ID] = a
	return a, nil
}

func (f *Fake) ListAssistants(_ context.Context) ([]remote.Assistant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]remote.Assistant, 0, len(f.assistants))
	for _, a := range f.assistants {
		out = append(out, a)
	}
	return out, nil
}

func (f *Fake) DeleteAssistant(_ context.Context, assistantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.assistants[assistantID]; !ok {
		return fmt.Errorf("unknown assistant %s", assistantID)
	}
	delete(f.assistants, assistantID)
	return nil
}

func (f *Fake) CreateThread(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := mintID("thread")
	f.threads[id] = nil
	return id, nil
}

func (f *Fake) CreateMessage(_ context.Context, threadID, role, content string) (remote.Message, error) {
	if f.CreateMessageErr != nil {
		return remote.Message{}, f.CreateMessageErr
	}
	return f.AddRemoteMessage(threadID, role, content), nil
}

func (f *Fake) ListMessages(_ context.Context, threadID string) ([]remote.Message, error) {
	f.mu.Lock()
	f.ListMessagesCalls++
	f.mu.Unlock()
	return f.ThreadMessages(threadID), nil
}

func (f *Fake) RetrieveMessage(_ context.Context, threadID, messageID string) (remote.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, msg := range f.threads[threadID] {
		if msg.ID == messageID {
			return msg, nil
		}
	}
	return remote.Message{}, fmt.Errorf("unknown message %s", messageID)
}

func (f *Fake) CreateRun(_ context.Context, threadID, assistantID string) (remote.Run, error) {
	return remote.Run{
		ID:       mintID("run"),
		ThreadID: threadID,
		Status:   remote.RunStatusQueued,
	}, nil
}

func (f *Fake) RetrieveRun(_ context.Context, threadID, runID string) (remote.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RetrieveRunCalls++
	status := remote.RunStatusCompleted
	if len(f.RunStatuses) > 0 {
		status = f.RunStatuses[0]
		if len(f.RunStatuses) > 1 {
			f.RunStatuses = f.RunStatuses[1:]
		}
	}
	return remote.Run{ID: runID, ThreadID: threadID, Status: status}, nil
}

func (f *Fake) CreateVectorStore(_ context.Context, name string, fileIDs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := mintID("vs")
	f.stores[id] = append([]string(nil), fileIDs...)
	return id, nil
}

func (f *Fake) DeleteVectorStore(_ context.Context, vectorStoreID string) error {
	if f.DeleteVectorStoreErr != nil {
		return f.DeleteVectorStoreErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stores, vectorStoreID)
	f.DeletedStores = append(f.DeletedStores, vectorStoreID)
	return nil
}

func (f *Fake) UploadFile(_ context.Context, name string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailUploads[name] {
		return "", errors.New("registration refused: " + name)
	}
	f.Uploads = append(f.Uploads, name)
	return mintID("file"), nil
}

func (f *Fake) CreateFileBatch(_ context.Context, vectorStoreID string, fileIDs []string) (remote.FileBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.BatchFileIDs = append(f.BatchFileIDs, fileIDs...)
	return remote.FileBatch{ID: mintID("batch"), Status: remote.BatchStatusInProgress}, nil
}

func (f *Fake) UploadFileBatch(ctx context.Context, vectorStoreID string, uploads []remote.BatchUpload) (remote.FileBatch, error) {
	fileIDs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		id, err := f.UploadFile(ctx, u.Name, u.Reader)
		if err != nil {
			return remote.FileBatch{}, err
		}
		fileIDs = append(fileIDs, id)
	}
	return f.CreateFileBatch(ctx, vectorStoreID, fileIDs)
}

func (f *Fake) RetrieveFileBatch(_ context.Context, vectorStoreID, batchID string) (remote.FileBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RetrieveBatchCalls++
	status := remote.BatchStatusCompleted
	if len(f.BatchStatuses) > 0 {
		status = f.BatchStatuses[0]
		if len(f.BatchStatuses) > 1 {
			f.BatchStatuses = f.BatchStatuses[1:]
		}
	}
	return remote.FileBatch{ID: batchID, Status: status}, nil
}
