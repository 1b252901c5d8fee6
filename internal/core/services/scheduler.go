package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/logger"
)

// Task is a named piece of periodic maintenance.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int, error)

	nextRun time.Time
}

// Scheduler runs maintenance tasks in the background while the server is up.
// It is a pure core service with no external control API.
type Scheduler struct {
	tasks []*Task
	tick  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler for the given tasks. Tasks with a
// non-positive interval are ignored.
func NewScheduler(tasks ...Task) *Scheduler {
	s := &Scheduler{tick: time.Minute, now: time.Now}
	for i := range tasks {
		if tasks[i].Interval > 0 && tasks[i].Run != nil {
			t := tasks[i]
			s.tasks = append(s.tasks, &t)
		}
	}
	return s
}

// SessionPruneTask removes expired sessions.
func SessionPruneTask(sessions driven.SessionStore, interval time.Duration) Task {
	return Task{
		Name:     "session-prune",
		Interval: interval,
		Run: func(ctx context.Context) (int, error) {
			return sessions.DeleteExpired(ctx, time.Now())
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(doneCh)
	}()
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	// Wait for a running task to complete
	<-doneCh

	return nil
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	// Check for due tasks immediately on startup
	s.runDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runDueTasks(ctx)
		}
	}
}

// runDueTasks executes tasks whose next run time has passed. Tasks run
// one after another so a slow task never overlaps itself.
func (s *Scheduler) runDueTasks(ctx context.Context) {
	now := s.now()
	for _, task := range s.tasks {
		if !task.nextRun.IsZero() && now.Before(task.nextRun) {
			continue
		}
		started := s.now()
		n, err := task.Run(ctx)
		if err != nil {
			logger.Warn("scheduler: task %s failed: %v", task.Name, err)
		} else {
			logger.Debug("scheduler: task %s processed %d items in %s", task.Name, n, s.now().Sub(started))
		}
		task.nextRun = s.now().Add(task.Interval)
	}
}
