package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/models"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/remote/remotetest"
	"github.com/zanngujjar/ai-assistants/internal/store"
)

func newTestHistory(t *testing.T) (*History, *remotetest.Fake, *store.MemoryStore, *models.Assistant, string) {
	t.Helper()
	ctx := context.Background()

	fake := remotetest.New()
	st := store.NewMemoryStore()

	created, err := fake.CreateAssistant(ctx, "Helper", "Be helpful.", "gpt-4-turbo-preview")
	require.NoError(t, err)
	assistant := &models.Assistant{
		ID:           created.ID,
		Name:         created.Name,
		Instructions: created.Instructions,
		Model:        created.Model,
	}
	require.NoError(t, st.PutAssistant(assistant))

	threadID, err := fake.CreateThread(ctx)
	require.NoError(t, err)

	h := NewHistory(fake, st, PollConfig{Interval: time.Millisecond}, assistant, threadID, zap.NewNop())
	return h, fake, st, assistant, threadID
}

func recordedIDs(assistant *models.Assistant, threadID string) []string {
	return assistant.Threads[threadID].MessageIDs
}

func remoteIDs(messages []remote.Message) []string {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	return ids
}

func TestAddMessageRecordsAndPersists(t *testing.T) {
	h, _, st, assistant, threadID := newTestHistory(t)
	ctx := context.Background()

	putsBefore := st.PutCount
	msg, err := h.AddMessage(ctx, "user", "hi")
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, []string{msg.ID}, recordedIDs(assistant, threadID))
	require.Equal(t, putsBefore+1, st.PutCount)
}

func TestRefreshMatchesRemoteOrderWithoutDuplicates(t *testing.T) {
	h, fake, _, assistant, threadID := newTestHistory(t)
	ctx := context.Background()

	_, err := h.AddMessage(ctx, "user", "hi")
	require.NoError(t, err)
	fake.AddRemoteMessage(threadID, "assistant", "hello")
	fake.AddRemoteMessage(threadID, "user", "how are you")

	messages, err := h.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, remoteIDs(messages), recordedIDs(assistant, threadID))

	// However often Refresh runs, the record stays the ascending remote
	// id list, duplicate-free.
	for i := 0; i < 3; i++ {
		again, err := h.Refresh(ctx)
		require.NoError(t, err)
		require.Equal(t, remoteIDs(messages), remoteIDs(again))
		require.Equal(t, remoteIDs(messages), recordedIDs(assistant, threadID))
	}
}

func TestRefreshPersistsOnlyWhenSomethingNew(t *testing.T) {
	h, fake, st, _, threadID := newTestHistory(t)
	ctx := context.Background()

	fake.AddRemoteMessage(threadID, "user", "hi")
	_, err := h.Refresh(ctx)
	require.NoError(t, err)
	putsAfterFirst := st.PutCount

	_, err = h.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, putsAfterFirst, st.PutCount)

	fake.AddRemoteMessage(threadID, "assistant", "hello")
	_, err = h.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, putsAfterFirst+1, st.PutCount)
}

func TestRefreshReturnsFullListNotJustNew(t *testing.T) {
	h, fake, _, _, threadID := newTestHistory(t)
	ctx := context.Background()

	fake.AddRemoteMessage(threadID, "user", "hi")
	_, err := h.Refresh(ctx)
	require.NoError(t, err)

	fake.AddRemoteMessage(threadID, "assistant", "hello")
	messages, err := h.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
}

func TestAddMessagePersistenceFailureSurfaces(t *testing.T) {
	h, _, st, _, _ := newTestHistory(t)
	ctx := context.Background()

	st.FailPuts = true
	_, err := h.AddMessage(ctx, "user", "hi")
	require.Error(t, err)
	var perr *store.PersistenceError
	require.ErrorAs(t, err, &perr)

	// The next refresh re-derives the missed write.
	st.FailPuts = false
	messages, err := h.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
}

func TestChatScenarioReplyLandsInRecord(t *testing.T) {
	h, fake, _, assistant, threadID := newTestHistory(t)
	ctx := context.Background()

	_, err := h.AddMessage(ctx, "user", "hi")
	require.NoError(t, err)

	run, err := h.StartRun(ctx)
	require.NoError(t, err)

	fake.RunStatuses = []remote.RunStatus{
		remote.RunStatusInProgress,
		remote.RunStatusCompleted,
	}
	done, err := h.WaitForRun(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, remote.RunStatusCompleted, done.Status)

	reply := fake.AddRemoteMessage(threadID, "assistant", "Hello! How can I help?")

	messages, err := h.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, reply.ID, messages[len(messages)-1].ID)
	require.Equal(t, "assistant", messages[len(messages)-1].Role)

	ids := recordedIDs(assistant, threadID)
	require.Equal(t, reply.ID, ids[len(ids)-1])
}
