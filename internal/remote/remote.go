package remote

import (
	"context"
	"io"
)

// RunStatus is the remote run lifecycle state.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCancelling RunStatus = "cancelling"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusCancelled  RunStatus = "cancelled"
	RunStatusExpired    RunStatus = "expired"
)

// Terminal reports whether the run will make no further progress.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled, RunStatusExpired:
		return true
	}
	return false
}

// Run is one asynchronous "produce the assistant's next reply" operation.
// Runs are never persisted locally.
type Run struct {
	ID       string
	ThreadID string
	Status   RunStatus
}

// Message is one message in a remote thread.
type Message struct {
	ID        string
	Role      string
	Content   string
	CreatedAt int64
}

// Assistant is the remote service's view of an assistant.
type Assistant struct {
	ID           string
	Name         string
	Instructions string
	Model        string
}

// BatchStatus is the remote file-ingestion batch lifecycle state.
type BatchStatus string

const (
	BatchStatusInProgress BatchStatus = "in_progress"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// Terminal reports whether the batch will make no further progress.
func (s BatchStatus) Terminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed || s == BatchStatusCancelled
}

// FileBatch is one asynchronous vector-store ingestion batch.
type FileBatch struct {
	ID     string
	Status BatchStatus
}

// BatchUpload is one file stream destined for an ingestion batch.
type BatchUpload struct {
	Name   string
	Reader io.Reader
}

// Service is the capability surface this program needs from the hosted AI
// service. Transport failures are returned wrapped and are never retried
// here; the two polling loops in chat and hive re-check status only.
type Service interface {
	CreateAssistant(ctx context.Context, name, instructions, model string) (Assistant, error)
	ListAssistants(ctx context.Context) ([]Assistant, error)
	DeleteAssistant(ctx context.Context, assistantID string) error

	CreateThread(ctx context.Context) (string, error)
	CreateMessage(ctx context.Context, threadID, role, content string) (Message, error)
	// ListMessages returns the thread's full history in ascending
	// creation order.
	ListMessages(ctx context.Context, threadID string) ([]Message, error)
	RetrieveMessage(ctx context.Context, threadID, messageID string) (Message, error)

	CreateRun(ctx context.Context, threadID, assistantID string) (Run, error)
	RetrieveRun(ctx context.Context, threadID, runID string) (Run, error)

	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error)
	DeleteVectorStore(ctx context.Context, vectorStoreID string) error
	// UploadFile registers one byte stream and returns its remote file id.
	UploadFile(ctx context.Context, name string, r io.Reader) (string, error)
	// CreateFileBatch submits already-registered file ids for ingestion.
	CreateFileBatch(ctx context.Context, vectorStoreID string, fileIDs []string) (FileBatch, error)
	// UploadFileBatch registers the given streams and submits them as one
	// ingestion batch. It returns after submission; callers poll
	// RetrieveFileBatch for completion.
	UploadFileBatch(ctx context.Context, vectorStoreID string, uploads []BatchUpload) (FileBatch, error)
	RetrieveFileBatch(ctx context.Context, vectorStoreID, batchID string) (FileBatch, error)
}
