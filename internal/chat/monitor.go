package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/remote"
)

var (
	// ErrRunFailed reports a run that reached a terminal failure status.
	ErrRunFailed = errors.New("assistant run failed")
	// ErrRunTimeout reports a run still pending after MaxAttempts polls.
	ErrRunTimeout = errors.New("assistant run timed out")
)

// PollConfig controls the bounded-interval status polling used for runs and
// ingestion batches. MaxAttempts of 0 means poll until terminal.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollConfig matches the service's pacing: one status check per
// second, no attempt cap.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: time.Second}
}

// Monitor drives one asynchronous run to a terminal outcome.
type Monitor struct {
	svc    remote.Service
	cfg    PollConfig
	logger *zap.Logger
}

func NewMonitor(svc remote.Service, cfg PollConfig, logger *zap.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Monitor{svc: svc, cfg: cfg, logger: logger}
}

// Wait polls the run until it reaches a terminal status and returns the
// terminal record. A terminal failure status yields ErrRunFailed; exceeding
// MaxAttempts yields ErrRunTimeout. Transport errors are returned
// immediately, not retried.
func (m *Monitor) Wait(ctx context.Context, threadID, runID string) (remote.Run, error) {
	for attempt := 1; ; attempt++ {
		run, err := m.svc.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return remote.Run{}, err
		}

		if run.Status.Terminal() {
			if run.Status == remote.RunStatusCompleted {
				return run, nil
			}
			m.logger.Warn("run reached failure status",
				zap.String("thread_id", threadID),
				zap.String("run_id", runID),
				zap.String("status", string(run.Status)))
			return run, fmt.Errorf("%w: status %s", ErrRunFailed, run.Status)
		}

		if m.cfg.MaxAttempts > 0 && attempt >= m.cfg.MaxAttempts {
			return run, fmt.Errorf("%w: still %s after %d polls",
				ErrRunTimeout, run.Status, attempt)
		}

		if err := sleep(ctx, m.cfg.Interval); err != nil {
			return remote.Run{}, err
		}
	}
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
