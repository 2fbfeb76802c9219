package hive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/remote/remotetest"
	"github.com/zanngujjar/ai-assistants/internal/store"
)

func newTestManager() (*Manager, *remotetest.Fake, *store.MemoryStore) {
	fake := remotetest.New()
	st := store.NewMemoryStore()
	m := NewManager(fake, st, chat.PollConfig{Interval: time.Millisecond}, zap.NewNop())
	return m, fake, st
}

func writeTextFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0o644))
	}
	return dir
}

func TestCreateHoneycombRegistersAndPersists(t *testing.T) {
	m, fake, st := newTestManager()
	ctx := context.Background()

	dir := writeTextFiles(t, "a.txt", "b.txt", "readme.md")

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", dir)
	require.NoError(t, err)
	require.NotEmpty(t, honeycomb.ID)

	// Only the .txt files, in enumeration order, each with a file id.
	require.Len(t, honeycomb.Files, 2)
	require.Equal(t, "a.txt", honeycomb.Files[0].Name)
	require.Equal(t, "b.txt", honeycomb.Files[1].Name)
	require.NotEmpty(t, honeycomb.Files[0].OpenAIFileID)
	require.NotEmpty(t, honeycomb.Files[1].OpenAIFileID)
	require.Equal(t, filepath.Join(dir, "a.txt"), honeycomb.Files[0].Path)

	// The vector store holds the same ids, and the batch was submitted.
	require.ElementsMatch(t,
		[]string{honeycomb.Files[0].OpenAIFileID, honeycomb.Files[1].OpenAIFileID},
		fake.StoreFileIDs(honeycomb.ID))
	require.Len(t, fake.BatchFileIDs, 2)

	persisted, err := st.LoadHoneycombs()
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	require.Equal(t, honeycomb.ID, persisted[0].ID)
}

func TestCreateHoneycombPartialFailureKeepsAlignment(t *testing.T) {
	m, fake, _ := newTestManager()
	ctx := context.Background()

	dir := writeTextFiles(t, "a.txt", "b.txt", "c.txt")
	fake.FailUploads["b.txt"] = true

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", dir)
	require.NoError(t, err)

	require.Len(t, honeycomb.Files, 3)
	require.Equal(t, "a.txt", honeycomb.Files[0].Name)
	require.Equal(t, "b.txt", honeycomb.Files[1].Name)
	require.Equal(t, "c.txt", honeycomb.Files[2].Name)
	require.NotEmpty(t, honeycomb.Files[0].OpenAIFileID)
	require.Empty(t, honeycomb.Files[1].OpenAIFileID)
	require.NotEmpty(t, honeycomb.Files[2].OpenAIFileID)

	// The store was created with the two survivors only.
	require.Len(t, fake.StoreFileIDs(honeycomb.ID), 2)
}

func TestCreateHoneycombWithoutFolder(t *testing.T) {
	m, fake, _ := newTestManager()
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "empty", "no files", "")
	require.NoError(t, err)
	require.Empty(t, honeycomb.Files)
	require.Empty(t, fake.BatchFileIDs)
	require.False(t, honeycomb.CreatedAt.IsZero())
}

func TestAddFilesWaitsForBatchAndRecordsEntries(t *testing.T) {
	m, fake, st := newTestManager()
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", "")
	require.NoError(t, err)

	dir := writeTextFiles(t, "x.txt", "y.txt")
	fake.BatchStatuses = []remote.BatchStatus{
		remote.BatchStatusInProgress,
		remote.BatchStatusCompleted,
	}

	require.NoError(t, m.AddFiles(ctx, honeycomb.ID, dir))
	require.Equal(t, 2, fake.RetrieveBatchCalls)
	require.Equal(t, []string{"x.txt", "y.txt"}, fake.Uploads)

	persisted, err := st.LoadHoneycombs()
	require.NoError(t, err)
	require.Len(t, persisted[0].Files, 2)
	// The batch path reports no per-file ids.
	require.Empty(t, persisted[0].Files[0].OpenAIFileID)
	require.Empty(t, persisted[0].Files[1].OpenAIFileID)
}

func TestAddFilesBatchFailureLeavesRecordUnchanged(t *testing.T) {
	m, fake, st := newTestManager()
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", "")
	require.NoError(t, err)

	dir := writeTextFiles(t, "x.txt")
	fake.BatchStatuses = []remote.BatchStatus{remote.BatchStatusFailed}

	err = m.AddFiles(ctx, honeycomb.ID, dir)
	require.ErrorIs(t, err, ErrBatchFailed)

	persisted, err := st.LoadHoneycombs()
	require.NoError(t, err)
	require.Empty(t, persisted[0].Files)
}

func TestAddFilesBatchTimeout(t *testing.T) {
	fake := remotetest.New()
	st := store.NewMemoryStore()
	m := NewManager(fake, st, chat.PollConfig{Interval: time.Millisecond, MaxAttempts: 2}, zap.NewNop())
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", "")
	require.NoError(t, err)

	dir := writeTextFiles(t, "x.txt")
	fake.BatchStatuses = []remote.BatchStatus{remote.BatchStatusInProgress}

	err = m.AddFiles(ctx, honeycomb.ID, dir)
	require.ErrorIs(t, err, ErrBatchTimeout)
	require.Equal(t, 2, fake.RetrieveBatchCalls)
}

func TestAddFilesRequiresTextFiles(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", "")
	require.NoError(t, err)

	dir := t.TempDir()
	err = m.AddFiles(ctx, honeycomb.ID, dir)
	require.ErrorIs(t, err, ErrNoTextFiles)
}

func TestDeleteHoneycombRemoteFailureKeepsLocalRecord(t *testing.T) {
	m, fake, st := newTestManager()
	ctx := context.Background()

	honeycomb, err := m.CreateHoneycomb(ctx, "notes", "my notes", "")
	require.NoError(t, err)

	fake.DeleteVectorStoreErr = os.ErrPermission
	require.Error(t, m.DeleteHoneycomb(ctx, honeycomb.ID))

	persisted, err := st.LoadHoneycombs()
	require.NoError(t, err)
	require.Len(t, persisted, 1)

	fake.DeleteVectorStoreErr = nil
	require.NoError(t, m.DeleteHoneycomb(ctx, honeycomb.ID))

	persisted, err = st.LoadHoneycombs()
	require.NoError(t, err)
	require.Empty(t, persisted)
}

func TestDeleteUnknownHoneycomb(t *testing.T) {
	m, _, _ := newTestManager()
	require.Error(t, m.DeleteHoneycomb(context.Background(), "vs_missing"))
}
