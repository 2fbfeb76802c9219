package remote

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIService implements Service on the hosted OpenAI assistants API.
type OpenAIService struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIService(apiKey string, logger *zap.Logger) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		logger: logger,
	}
}

func (s *OpenAIService) CreateAssistant(ctx context.Context, name, instructions, model string) (Assistant, error) {
	resp, err := s.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        model,
		Name:         &name,
		Instructions: &instructions,
	})
	if err != nil {
		return Assistant{}, fmt.Errorf("create assistant: %w", err)
	}
	return toAssistant(resp), nil
}

func (s *OpenAIService) ListAssistants(ctx context.Context) ([]Assistant, error) {
	limit := 100
	order := "desc"
	resp, err := s.client.ListAssistants(ctx, &limit, &order, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	assistants := make([]Assistant, 0, len(resp.Assistants))
	for _, a := range resp.Assistants {
		assistants = append(assistants, toAssistant(a))
	}
	return assistants, nil
}

func (s *OpenAIService) DeleteAssistant(ctx context.Context, assistantID string) error {
	if _, err := s.client.DeleteAssistant(ctx, assistantID); err != nil {
		return fmt.Errorf("delete assistant %s: %w", assistantID, err)
	}
	return nil
}

func (s *OpenAIService) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (s *OpenAIService) CreateMessage(ctx context.Context, threadID, role, content string) (Message, error) {
	msg, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    role,
		Content: content,
	})
	if err != nil {
		return Message{}, fmt.Errorf("create message in thread %s: %w", threadID, err)
	}
	return toMessage(msg), nil
}

func (s *OpenAIService) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	order := "asc"
	resp, err := s.client.ListMessage(ctx, threadID, nil, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list messages in thread %s: %w", threadID, err)
	}
	messages := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		messages = append(messages, toMessage(m))
	}
	return messages, nil
}

func (s *OpenAIService) RetrieveMessage(ctx context.Context, threadID, messageID string) (Message, error) {
	msg, err := s.client.RetrieveMessage(ctx, threadID, messageID)
	if err != nil {
		return Message{}, fmt.Errorf("retrieve message %s: %w", messageID, err)
	}
	return toMessage(msg), nil
}

func (s *OpenAIService) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: assistantID,
	})
	if err != nil {
		return Run{}, fmt.Errorf("create run in thread %s: %w", threadID, err)
	}
	return toRun(run), nil
}

func (s *OpenAIService) RetrieveRun(ctx context.Context, threadID, runID string) (Run, error) {
	run, err := s.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	return toRun(run), nil
}

func (s *OpenAIService) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error) {
	store, err := s.client.CreateVectorStore(ctx, openai.VectorStoreRequest{
		Name:    name,
		FileIDs: fileIDs,
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}
	return store.ID, nil
}

func (s *OpenAIService) DeleteVectorStore(ctx context.Context, vectorStoreID string) error {
	if _, err := s.client.DeleteVectorStore(ctx, vectorStoreID); err != nil {
		return fmt.Errorf("delete vector store %s: %w", vectorStoreID, err)
	}
	return nil
}

func (s *OpenAIService) UploadFile(ctx context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	file, err := s.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("upload file %s: %w", name, err)
	}
	return file.ID, nil
}

func (s *OpenAIService) CreateFileBatch(ctx context.Context, vectorStoreID string, fileIDs []string) (FileBatch, error) {
	batch, err := s.client.CreateVectorStoreFileBatch(ctx, vectorStoreID, openai.VectorStoreFileBatchRequest{
		FileIDs: fileIDs,
	})
	if err != nil {
		return FileBatch{}, fmt.Errorf("create file batch in store %s: %w", vectorStoreID, err)
	}
	return toBatch(batch), nil
}

// UploadFileBatch registers each stream, then submits everything that
// registered as one batch. The SDK has no combined upload-and-poll call, so
// completion is left to the caller's RetrieveFileBatch loop.
func (s *OpenAIService) UploadFileBatch(ctx context.Context, vectorStoreID string, uploads []BatchUpload) (FileBatch, error) {
	fileIDs := make([]string, 0, len(uploads))
	for _, u := range uploads {
		id, err := s.UploadFile(ctx, u.Name, u.Reader)
		if err != nil {
			return FileBatch{}, err
		}
		s.logger.Debug("registered file for batch",
			zap.String("vector_store_id", vectorStoreID),
			zap.String("file", u.Name),
			zap.String("file_id", id))
		fileIDs = append(fileIDs, id)
	}
	return s.CreateFileBatch(ctx, vectorStoreID, fileIDs)
}

func (s *OpenAIService) RetrieveFileBatch(ctx context.Context, vectorStoreID, batchID string) (FileBatch, error) {
	batch, err := s.client.RetrieveVectorStoreFileBatch(ctx, vectorStoreID, batchID)
	if err != nil {
		return FileBatch{}, fmt.Errorf("retrieve file batch %s: %w", batchID, err)
	}
	return toBatch(batch), nil
}

func toAssistant(a openai.Assistant) Assistant {
	out := Assistant{ID: a.ID, Model: a.Model}
	if a.Name != nil {
		out.Name = *a.Name
	}
	if a.Instructions != nil {
		out.Instructions = *a.Instructions
	}
	return out
}

func toMessage(m openai.Message) Message {
	out := Message{
		ID:        m.ID,
		Role:      m.Role,
		CreatedAt: int64(m.CreatedAt),
	}
	for _, c := range m.Content {
		if c.Text != nil {
			out.Content = c.Text.Value
			break
		}
	}
	return out
}

func toRun(r openai.Run) Run {
	return Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		Status:   RunStatus(r.Status),
	}
}

func toBatch(b openai.VectorStoreFileBatch) FileBatch {
	return FileBatch{
		ID:     b.ID,
		Status: BatchStatus(b.Status),
	}
}
