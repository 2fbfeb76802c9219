// Package chat keeps the local mirror of an assistant's conversation
// threads consistent with the remote service and drives runs to completion.
package chat

import (
	"context"

	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/models"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/store"
)

// History reconciles one assistant's thread with remote state. The thread
// record's message-ID sequence stays a subsequence, in order, of the remote
// history: IDs are appended when first observed and never reordered or
// dropped.
type History struct {
	svc       remote.Service
	store     store.Store
	monitor   *Monitor
	assistant *models.Assistant
	threadID  string
	logger    *zap.Logger
}

func NewHistory(svc remote.Service, st store.Store, cfg PollConfig, assistant *models.Assistant, threadID string, logger *zap.Logger) *History {
	return &History{
		svc:       svc,
		store:     st,
		monitor:   NewMonitor(svc, cfg, logger),
		assistant: assistant,
		threadID:  threadID,
		logger:    logger,
	}
}

// AddMessage sends one message to the remote thread, records its id
// locally, and persists the owning assistant. The remote service mints the
// id, so a fresh append can never duplicate an observed one; the guard
// protects the invariant anyway.
func (h *History) AddMessage(ctx context.Context, role, content string) (remote.Message, error) {
	msg, err := h.svc.CreateMessage(ctx, h.threadID, role, content)
	if err != nil {
		return remote.Message{}, err
	}

	rec := h.assistant.Thread(h.threadID)
	if !rec.HasMessage(msg.ID) {
		rec.MessageIDs = append(rec.MessageIDs, msg.ID)
	}

	if err := h.store.PutAssistant(h.assistant); err != nil {
		// The remote message exists either way; Refresh re-derives the
		// missed write on its next call.
		h.logger.Error("failed to persist assistant after append",
			zap.String("assistant_id", h.assistant.ID),
			zap.String("thread_id", h.threadID),
			zap.Error(err))
		return msg, err
	}
	return msg, nil
}

// Refresh fetches the thread's full remote history in ascending creation
// order, appends any ids not yet recorded locally (in the fetched order),
// and returns the complete fetched list. The local record is persisted only
// when something new was observed.
func (h *History) Refresh(ctx context.Context) ([]remote.Message, error) {
	messages, err := h.svc.ListMessages(ctx, h.threadID)
	if err != nil {
		return nil, err
	}

	rec := h.assistant.Thread(h.threadID)
	seen := make(map[string]struct{}, len(rec.MessageIDs))
	for _, id := range rec.MessageIDs {
		seen[id] = struct{}{}
	}

	added := 0
	for _, msg := range messages {
		if _, ok := seen[msg.ID]; ok {
			continue
		}
		rec.MessageIDs = append(rec.MessageIDs, msg.ID)
		seen[msg.ID] = struct{}{}
		added++
	}

	if added > 0 {
		h.logger.Debug("reconciled thread history",
			zap.String("thread_id", h.threadID),
			zap.Int("new_messages", added))
		if err := h.store.PutAssistant(h.assistant); err != nil {
			h.logger.Error("failed to persist assistant after refresh",
				zap.String("assistant_id", h.assistant.ID),
				zap.String("thread_id", h.threadID),
				zap.Error(err))
			return messages, err
		}
	}
	return messages, nil
}

// StartRun asks the service to produce the assistant's next reply.
func (h *History) StartRun(ctx context.Context) (remote.Run, error) {
	return h.svc.CreateRun(ctx, h.threadID, h.assistant.ID)
}

// WaitForRun blocks until the run reaches a terminal status.
func (h *History) WaitForRun(ctx context.Context, runID string) (remote.Run, error) {
	return h.monitor.Wait(ctx, h.threadID, runID)
}

// RetrieveMessage fetches one recorded message by id.
func (h *History) RetrieveMessage(ctx context.Context, messageID string) (remote.Message, error) {
	return h.svc.RetrieveMessage(ctx, h.threadID, messageID)
}
