package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/models"
	"github.com/zanngujjar/ai-assistants/internal/remote"
)

func (a *App) createAssistant(ctx context.Context) error {
	assistants, err := a.store.LoadAssistants()
	if err != nil {
		return err
	}

	var name string
	for {
		var ok bool
		name, ok = a.promptNonEmpty("Enter the assistant name:")
		if !ok {
			return nil
		}
		if !nameTaken(assistants, name) {
			break
		}
		fmt.Fprintln(a.out, "An assistant with this name already exists. Please choose a different name.")
	}

	instructions, ok := a.prompt("Enter the assistant instructions:")
	if !ok {
		return nil
	}
	modelIdx, ok := a.choose("Select the model:", a.cfg.OpenAI.Models)
	if !ok {
		return nil
	}

	created, err := a.svc.CreateAssistant(ctx, name, instructions, a.cfg.OpenAI.Models[modelIdx])
	if err != nil {
		return err
	}

	assistant := &models.Assistant{
		ID:           created.ID,
		Name:         created.Name,
		Instructions: created.Instructions,
		Model:        created.Model,
	}
	if err := a.store.PutAssistant(assistant); err != nil {
		return err
	}

	a.logger.Info("created assistant",
		zap.String("assistant_id", assistant.ID),
		zap.String("name", assistant.Name))
	fmt.Fprintf(a.out, "Created assistant %s (%s)\n", assistant.Name, assistant.ID)
	return nil
}

func (a *App) viewAssistants(ctx context.Context) error {
	remoteAssistants, err := a.svc.ListAssistants(ctx)
	if err != nil {
		return err
	}
	local, err := a.store.LoadAssistants()
	if err != nil {
		return err
	}

	for _, assistant := range remoteAssistants {
		fmt.Fprintf(a.out, "\nName: %s\n", assistant.Name)
		fmt.Fprintf(a.out, "id: %s\n", assistant.ID)
		fmt.Fprintf(a.out, "Model: %s\n", assistant.Model)
		fmt.Fprintf(a.out, "Instructions: %s\n", assistant.Instructions)
		if record := findAssistant(local, assistant.ID); record != nil {
			var threadNames []string
			for _, thread := range record.Threads {
				if thread.Name != "" {
					threadNames = append(threadNames, thread.Name)
				}
			}
			if len(threadNames) == 0 {
				fmt.Fprintln(a.out, "Chat History: No chats yet")
			} else {
				fmt.Fprintf(a.out, "Chat History: %s\n", strings.Join(threadNames, ", "))
			}
		}
		fmt.Fprintln(a.out, "------------------------")
	}
	return nil
}

func (a *App) deleteAssistant(ctx context.Context) error {
	assistant, ok, err := a.selectAssistant("Select an assistant to delete:")
	if err != nil || !ok {
		return err
	}

	if !a.confirm(fmt.Sprintf("Are you sure you want to delete %s?", assistant.Name)) {
		fmt.Fprintln(a.out, "Deletion cancelled.")
		return nil
	}

	if err := a.svc.DeleteAssistant(ctx, assistant.ID); err != nil {
		return err
	}
	if err := a.store.DeleteAssistant(assistant.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Successfully deleted assistant: %s\n", assistant.Name)
	return nil
}

func (a *App) useAssistant(ctx context.Context) error {
	assistant, ok, err := a.selectAssistant("Select an assistant to chat with:")
	if err != nil || !ok {
		return err
	}

	threadID, err := a.selectOrCreateThread(ctx, assistant)
	if err != nil || threadID == "" {
		return err
	}

	history := chat.NewHistory(a.svc, a.store, a.poll, assistant, threadID, a.logger)
	if _, err := history.Refresh(ctx); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nChatting with %s\n", assistant.Name)
	fmt.Fprintln(a.out, `Type "exit" to return to main menu`)

	for {
		input, ok := a.prompt("You:")
		if !ok {
			return nil
		}
		if strings.ToLower(input) == "exit" {
			return nil
		}

		if _, err := history.AddMessage(ctx, "user", input); err != nil {
			return err
		}
		run, err := history.StartRun(ctx)
		if err != nil {
			return err
		}
		if _, err := history.WaitForRun(ctx, run.ID); err != nil {
			return err
		}
		messages, err := history.Refresh(ctx)
		if err != nil {
			return err
		}

		if reply := lastAssistantMessage(messages); reply != nil {
			fmt.Fprintf(a.out, "\nAssistant: %s\n\n", reply.Content)
		}
	}
}

func (a *App) viewChatHistory(ctx context.Context) error {
	assistant, ok, err := a.selectAssistant("Select an assistant to view chat history:")
	if err != nil || !ok {
		return err
	}
	if len(assistant.Threads) == 0 {
		fmt.Fprintln(a.out, "No chat history found for this assistant.")
		return nil
	}

	threadIDs := make([]string, 0, len(assistant.Threads))
	options := make([]string, 0, len(assistant.Threads))
	for id, thread := range assistant.Threads {
		name := thread.Name
		if name == "" {
			name = "Thread"
		}
		threadIDs = append(threadIDs, id)
		options = append(options, fmt.Sprintf("%s (%d messages)", name, len(thread.MessageIDs)))
	}

	idx, ok := a.choose("Select a thread to view:", options)
	if !ok {
		return nil
	}
	threadID := threadIDs[idx]
	record := assistant.Threads[threadID]

	fmt.Fprintln(a.out, "\n=== Chat History ===")
	fmt.Fprintf(a.out, "Assistant: %s\n", assistant.Name)
	fmt.Fprintf(a.out, "Thread ID: %s\n", threadID)
	fmt.Fprintf(a.out, "Found %d messages\n\n", len(record.MessageIDs))

	history := chat.NewHistory(a.svc, a.store, a.poll, assistant, threadID, a.logger)
	for _, messageID := range record.MessageIDs {
		msg, err := history.RetrieveMessage(ctx, messageID)
		if err != nil {
			fmt.Fprintf(a.out, "Could not retrieve message %s: %v\n", messageID, err)
			continue
		}
		timestamp := time.Unix(msg.CreatedAt, 0).Local().Format("2006-01-02 15:04:05")
		role := msg.Role
		if role != "" {
			role = strings.ToUpper(role[:1]) + role[1:]
		}
		fmt.Fprintf(a.out, "[%s] %s:\n%s\n---\n", timestamp, role, msg.Content)
	}

	a.pause()
	return nil
}

// selectOrCreateThread offers the assistant's recorded threads plus a
// create-new option, or goes straight to creation when none exist.
func (a *App) selectOrCreateThread(ctx context.Context, assistant *models.Assistant) (string, error) {
	if len(assistant.Threads) > 0 {
		threadIDs := make([]string, 0, len(assistant.Threads))
		options := make([]string, 0, len(assistant.Threads)+1)
		for id, thread := range assistant.Threads {
			name := thread.Name
			if name == "" {
				name = "Thread " + id
			}
			threadIDs = append(threadIDs, id)
			options = append(options, name)
		}
		options = append(options, "Create New Thread")

		idx, ok := a.choose("Select a thread or create new:", options)
		if !ok {
			return "", nil
		}
		if idx < len(threadIDs) {
			return threadIDs[idx], nil
		}
	}

	threadID, err := a.svc.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	name, ok := a.promptNonEmpty("Enter a name for this thread:")
	if !ok {
		return "", nil
	}

	record := assistant.Thread(threadID)
	record.Name = name
	if err := a.store.PutAssistant(assistant); err != nil {
		return "", err
	}
	return threadID, nil
}

func (a *App) selectAssistant(label string) (*models.Assistant, bool, error) {
	assistants, err := a.store.LoadAssistants()
	if err != nil {
		return nil, false, err
	}
	if len(assistants) == 0 {
		fmt.Fprintln(a.out, "No assistants found. Please create an assistant first.")
		return nil, false, nil
	}

	options := make([]string, 0, len(assistants))
	for _, assistant := range assistants {
		options = append(options, assistant.Name)
	}
	idx, ok := a.choose(label, options)
	if !ok {
		return nil, false, nil
	}
	return assistants[idx], true, nil
}

func nameTaken(assistants []*models.Assistant, name string) bool {
	for _, assistant := range assistants {
		if strings.EqualFold(assistant.Name, name) {
			return true
		}
	}
	return false
}

func findAssistant(assistants []*models.Assistant, id string) *models.Assistant {
	for _, assistant := range assistants {
		if assistant.ID == id {
			return assistant
		}
	}
	return nil
}

func lastAssistantMessage(messages []remote.Message) *remote.Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "assistant" {
			return &messages[i]
		}
	}
	return nil
}
