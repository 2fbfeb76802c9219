// Package gateway exposes one configured assistant over Telegram, driving
// the same append/run/refresh pipeline the interactive chat uses.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/models"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/store"
)

// Telegram answers chats as one assistant, keeping one remote thread per
// Telegram chat. Thread records are named "telegram:<chat id>" so they
// survive restarts in the assistants document.
type Telegram struct {
	api           *tgbotapi.BotAPI
	svc           remote.Service
	store         store.Store
	assistantName string
	poll          chat.PollConfig
	logger        *zap.Logger
}

func New(token, assistantName string, svc remote.Service, st store.Store, poll chat.PollConfig, logger *zap.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Telegram{
		api:           api,
		svc:           svc,
		store:         st,
		assistantName: assistantName,
		poll:          poll,
		logger:        logger,
	}, nil
}

// Start consumes updates until the context is cancelled.
func (t *Telegram) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		t.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		t.handleMessage(ctx, update.Message)
	}
	return ctx.Err()
}

func (t *Telegram) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	reply, err := t.answer(ctx, message.Chat.ID, message.Text)
	if err != nil {
		t.logger.Error("failed to answer chat",
			zap.Int64("chat_id", message.Chat.ID),
			zap.Error(err))
		reply = "Something went wrong, please try again."
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("failed to send reply",
			zap.Int64("chat_id", message.Chat.ID),
			zap.Error(err))
	}
}

func (t *Telegram) answer(ctx context.Context, chatID int64, text string) (string, error) {
	assistant, err := t.findAssistant()
	if err != nil {
		return "", err
	}

	threadID, err := t.chatThread(ctx, assistant, chatID)
	if err != nil {
		return "", err
	}

	history := chat.NewHistory(t.svc, t.store, t.poll, assistant, threadID, t.logger)
	if _, err := history.AddMessage(ctx, "user", text); err != nil {
		return "", err
	}
	run, err := history.StartRun(ctx)
	if err != nil {
		return "", err
	}
	if _, err := history.WaitForRun(ctx, run.ID); err != nil {
		return "", err
	}
	messages, err := history.Refresh(ctx)
	if err != nil {
		return "", err
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return messages[i].Content, nil
		}
	}
	return "", fmt.Errorf("run completed without an assistant reply")
}

func (t *Telegram) findAssistant() (*models.Assistant, error) {
	assistants, err := t.store.LoadAssistants()
	if err != nil {
		return nil, err
	}
	for _, assistant := range assistants {
		if strings.EqualFold(assistant.Name, t.assistantName) {
			return assistant, nil
		}
	}
	return nil, fmt.Errorf("assistant %q not found in local store", t.assistantName)
}

// chatThread returns the chat's recorded thread, creating and persisting a
// fresh one on first contact.
func (t *Telegram) chatThread(ctx context.Context, assistant *models.Assistant, chatID int64) (string, error) {
	name := "telegram:" + strconv.FormatInt(chatID, 10)
	for id, record := range assistant.Threads {
		if record.Name == name {
			return id, nil
		}
	}

	threadID, err := t.svc.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	record := assistant.Thread(threadID)
	record.Name = name
	if err := t.store.PutAssistant(assistant); err != nil {
		return "", err
	}
	t.logger.Info("created thread for chat",
		zap.Int64("chat_id", chatID),
		zap.String("thread_id", threadID))
	return threadID, nil
}
