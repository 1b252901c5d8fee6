package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/core/domain"
)

func TestNewScheduler_IgnoresUnusableTasks(t *testing.T) {
	noop := func(context.Context) (int, error) { return 0, nil }
	s := NewScheduler(
		Task{Name: "ok", Interval: time.Minute, Run: noop},
		Task{Name: "no-interval", Run: noop},
		Task{Name: "no-run", Interval: time.Minute},
	)
	require.Len(t, s.tasks, 1)
	assert.Equal(t, "ok", s.tasks[0].Name)
}

func TestScheduler_RunDueTasks(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(Task{
		Name:     "count",
		Interval: time.Hour,
		Run: func(context.Context) (int, error) {
			runs.Add(1)
			return 1, nil
		},
	})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.runDueTasks(context.Background())
	s.runDueTasks(context.Background())
	assert.Equal(t, int32(1), runs.Load(), "task is not due again before its interval")

	now = now.Add(time.Hour)
	s.runDueTasks(context.Background())
	assert.Equal(t, int32(2), runs.Load())
}

func TestScheduler_FailingTaskIsRescheduled(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(Task{
		Name:     "fail",
		Interval: time.Hour,
		Run: func(context.Context) (int, error) {
			runs.Add(1)
			return 0, errors.New("boom")
		},
	})
	s.runDueTasks(context.Background())
	s.runDueTasks(context.Background())
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_StartStop(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler(Task{
		Name:     "signal",
		Interval: time.Hour,
		Run: func(context.Context) (int, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return 0, nil
		},
	})

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run on start")
	}

	require.NoError(t, s.Stop())
	assert.NoError(t, <-errCh)
	assert.NoError(t, s.Stop(), "stopping twice is a no-op")
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}

func TestSessionPruneTask(t *testing.T) {
	ctx := context.Background()
	sessions := memory.NewSessionStore()
	now := time.Now()
	require.NoError(t, sessions.Save(ctx, &domain.Session{Token: "old", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, sessions.Save(ctx, &domain.Session{Token: "live", ExpiresAt: now.Add(time.Hour)}))

	task := SessionPruneTask(sessions, time.Minute)
	removed, err := task.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = sessions.Get(ctx, "live")
	assert.NoError(t, err)
}
