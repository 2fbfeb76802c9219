// Package hive manages honeycombs: remote vector stores paired with a
// local record of the files fed into them.
package hive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/zanngujjar/ai-assistants/internal/chat"
	"github.com/zanngujjar/ai-assistants/internal/models"
	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/store"
)

var (
	// ErrBatchFailed reports an ingestion batch with a terminal failure
	// status.
	ErrBatchFailed = errors.New("file batch failed")
	// ErrBatchTimeout reports a batch still in progress after the
	// configured number of polls.
	ErrBatchTimeout = errors.New("file batch timed out")
	// ErrNoTextFiles reports a source folder with nothing to ingest.
	ErrNoTextFiles = errors.New("no .txt files in folder")
)

// maxConcurrentUploads bounds the parallel file registrations issued during
// honeycomb creation.
const maxConcurrentUploads = 4

// Manager owns the honeycomb lifecycle: remote store creation, batched file
// ingestion, and teardown.
type Manager struct {
	svc    remote.Service
	store  store.Store
	poll   chat.PollConfig
	logger *zap.Logger

	now func() time.Time
}

func NewManager(svc remote.Service, st store.Store, poll chat.PollConfig, logger *zap.Logger) *Manager {
	if poll.Interval <= 0 {
		poll.Interval = time.Second
	}
	return &Manager{
		svc:    svc,
		store:  st,
		poll:   poll,
		logger: logger,
		now:    time.Now,
	}
}

// ListHoneycombs returns the local honeycomb collection.
func (m *Manager) ListHoneycombs() ([]*models.Honeycomb, error) {
	return m.store.LoadHoneycombs()
}

// registration is one file's upload outcome, tracked by original position
// so partial failure cannot shift later entries out of alignment.
type registration struct {
	fileID string
	err    error
}

// CreateHoneycomb creates a remote vector store and persists its local
// record. When sourceFolder is non-empty, the folder's .txt files (direct
// children only) are registered concurrently; files that fail registration
// are tolerated and recorded without a remote file id. Registered files are
// additionally submitted as an ingestion batch, which is not awaited.
func (m *Manager) CreateHoneycomb(ctx context.Context, name, description, sourceFolder string) (*models.Honeycomb, error) {
	var (
		files   []string
		results []registration
	)
	if sourceFolder != "" {
		var err error
		files, err = listTextFiles(sourceFolder)
		if err != nil {
			return nil, err
		}
		results = m.registerFiles(ctx, sourceFolder, files)
	}

	fileIDs := make([]string, 0, len(results))
	for i, res := range results {
		if res.err != nil {
			m.logger.Warn("file registration failed",
				zap.String("file", files[i]),
				zap.Error(res.err))
			continue
		}
		fileIDs = append(fileIDs, res.fileID)
	}

	storeID, err := m.svc.CreateVectorStore(ctx, "honeycomb_"+name, fileIDs)
	if err != nil {
		return nil, err
	}

	if len(fileIDs) > 0 {
		batch, err := m.svc.CreateFileBatch(ctx, storeID, fileIDs)
		if err != nil {
			return nil, err
		}
		m.logger.Info("submitted ingestion batch",
			zap.String("honeycomb_id", storeID),
			zap.String("batch_id", batch.ID),
			zap.Int("files", len(fileIDs)))
	}

	honeycomb := &models.Honeycomb{
		ID:          storeID,
		Name:        name,
		Description: description,
		CreatedAt:   m.now().UTC(),
		Files:       make([]models.FileEntry, 0, len(files)),
	}
	for i, file := range files {
		entry := models.FileEntry{
			Name: file,
			Path: filepath.Join(sourceFolder, file),
		}
		if results[i].err == nil {
			entry.OpenAIFileID = results[i].fileID
		}
		honeycomb.Files = append(honeycomb.Files, entry)
	}

	if err := m.store.PutHoneycomb(honeycomb); err != nil {
		return nil, err
	}
	return honeycomb, nil
}

// registerFiles uploads the folder's files concurrently and returns one
// outcome per input index.
func (m *Manager) registerFiles(ctx context.Context, folder string, files []string) []registration {
	results := make([]registration, len(files))
	sem := semaphore.NewWeighted(maxConcurrentUploads)

	var wg sync.WaitGroup
	for i, file := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = registration{err: err}
			continue
		}
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			defer sem.Release(1)

			path := filepath.Join(folder, file)
			f, err := os.Open(path)
			if err != nil {
				results[i] = registration{err: err}
				return
			}
			defer f.Close()

			fileID, err := m.svc.UploadFile(ctx, file, f)
			results[i] = registration{fileID: fileID, err: err}
		}(i, file)
	}
	wg.Wait()
	return results
}

// AddFiles submits a folder's .txt files to an existing honeycomb as one
// ingestion batch and blocks until the batch reaches a terminal state. The
// batch path reports no per-file ids, so the new entries are recorded
// without them.
func (m *Manager) AddFiles(ctx context.Context, honeycombID, sourceFolder string) error {
	honeycomb, err := m.findHoneycomb(honeycombID)
	if err != nil {
		return err
	}

	files, err := listTextFiles(sourceFolder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoTextFiles
	}

	uploads := make([]remote.BatchUpload, 0, len(files))
	handles := make([]*os.File, 0, len(files))
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()
	for _, file := range files {
		f, err := os.Open(filepath.Join(sourceFolder, file))
		if err != nil {
			return err
		}
		handles = append(handles, f)
		uploads = append(uploads, remote.BatchUpload{Name: file, Reader: f})
	}

	batch, err := m.svc.UploadFileBatch(ctx, honeycombID, uploads)
	if err != nil {
		return err
	}

	if err := m.awaitBatch(ctx, honeycombID, batch.ID); err != nil {
		return err
	}

	for _, file := range files {
		honeycomb.Files = append(honeycomb.Files, models.FileEntry{
			Name: file,
			Path: filepath.Join(sourceFolder, file),
		})
	}
	return m.store.PutHoneycomb(honeycomb)
}

// DeleteHoneycomb removes the remote store, then the local record. Remote
// deletion failure leaves the local record in place: a recorded honeycomb
// always refers to a store not yet confirmed gone.
func (m *Manager) DeleteHoneycomb(ctx context.Context, honeycombID string) error {
	if _, err := m.findHoneycomb(honeycombID); err != nil {
		return err
	}
	if err := m.svc.DeleteVectorStore(ctx, honeycombID); err != nil {
		return err
	}
	return m.store.DeleteHoneycomb(honeycombID)
}

// awaitBatch polls the ingestion batch with the same suspend/retry shape
// the run monitor uses.
func (m *Manager) awaitBatch(ctx context.Context, honeycombID, batchID string) error {
	for attempt := 1; ; attempt++ {
		batch, err := m.svc.RetrieveFileBatch(ctx, honeycombID, batchID)
		if err != nil {
			return err
		}

		if batch.Status.Terminal() {
			if batch.Status == remote.BatchStatusCompleted {
				return nil
			}
			return fmt.Errorf("%w: status %s", ErrBatchFailed, batch.Status)
		}

		if m.poll.MaxAttempts > 0 && attempt >= m.poll.MaxAttempts {
			return fmt.Errorf("%w: still %s after %d polls",
				ErrBatchTimeout, batch.Status, attempt)
		}

		if err := sleep(ctx, m.poll.Interval); err != nil {
			return err
		}
	}
}

func (m *Manager) findHoneycomb(id string) (*models.Honeycomb, error) {
	honeycombs, err := m.store.LoadHoneycombs()
	if err != nil {
		return nil, err
	}
	for _, h := range honeycombs {
		if h.ID == id {
			return h, nil
		}
	}
	return nil, fmt.Errorf("unknown honeycomb %s", id)
}

// listTextFiles returns the folder's directly-contained .txt file names in
// a stable order. It does not recurse.
func listTextFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".txt") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
