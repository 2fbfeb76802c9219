package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zanngujjar/ai-assistants/internal/remote"
	"github.com/zanngujjar/ai-assistants/internal/remote/remotetest"
)

func fastPoll() PollConfig {
	return PollConfig{Interval: time.Millisecond}
}

func TestWaitReturnsOnFirstCompleted(t *testing.T) {
	fake := remotetest.New()
	fake.RunStatuses = []remote.RunStatus{
		remote.RunStatusQueued,
		remote.RunStatusInProgress,
		remote.RunStatusCompleted,
	}

	m := NewMonitor(fake, fastPoll(), zap.NewNop())
	run, err := m.Wait(context.Background(), "thread_1", "run_1")
	require.NoError(t, err)
	require.Equal(t, remote.RunStatusCompleted, run.Status)
	require.Equal(t, 3, fake.RetrieveRunCalls)
}

func TestWaitFailsOnFirstFailure(t *testing.T) {
	fake := remotetest.New()
	fake.RunStatuses = []remote.RunStatus{remote.RunStatusFailed}

	m := NewMonitor(fake, fastPoll(), zap.NewNop())
	_, err := m.Wait(context.Background(), "thread_1", "run_1")
	require.ErrorIs(t, err, ErrRunFailed)
	require.Equal(t, 1, fake.RetrieveRunCalls)
}

func TestWaitTreatsCancelledAsFailure(t *testing.T) {
	fake := remotetest.New()
	fake.RunStatuses = []remote.RunStatus{remote.RunStatusCancelled}

	m := NewMonitor(fake, fastPoll(), zap.NewNop())
	_, err := m.Wait(context.Background(), "thread_1", "run_1")
	require.ErrorIs(t, err, ErrRunFailed)
}

func TestWaitTimesOutAfterMaxAttempts(t *testing.T) {
	fake := remotetest.New()
	fake.RunStatuses = []remote.RunStatus{remote.RunStatusInProgress}

	m := NewMonitor(fake, PollConfig{Interval: time.Millisecond, MaxAttempts: 3}, zap.NewNop())
	_, err := m.Wait(context.Background(), "thread_1", "run_1")
	require.ErrorIs(t, err, ErrRunTimeout)
	require.NotErrorIs(t, err, ErrRunFailed)
	require.Equal(t, 3, fake.RetrieveRunCalls)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	fake := remotetest.New()
	fake.RunStatuses = []remote.RunStatus{remote.RunStatusInProgress}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	m := NewMonitor(fake, PollConfig{Interval: time.Minute}, zap.NewNop())
	_, err := m.Wait(ctx, "thread_1", "run_1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
