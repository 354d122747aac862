// Package scheduler runs the directory sync as a periodic, cancelable
// background task.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/notaryapp/backend/internal/logging"
	syncpkg "github.com/notaryapp/backend/internal/sync"
)

// syncTimeout bounds a single sync run.
const syncTimeout = 2 * time.Minute

// Scheduler manages the background sync loop.
type Scheduler struct {
	engine   *syncpkg.Engine
	interval time.Duration

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu             sync.RWMutex
	isRunning      bool
	syncInProgress bool
	lastSyncTime   time.Time
}

// NewScheduler creates a Scheduler syncing every interval.
func NewScheduler(engine *syncpkg.Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the background loop. Calling Start on a running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	logging.Info("background sync scheduler started",
		logging.Fields{"interval": s.interval.String()})
}

// Stop stops the scheduler and waits for the loop to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	logging.Info("background sync scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

// runSync executes one sync pass unless one is already in flight.
func (s *Scheduler) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.syncInProgress {
		s.mu.Unlock()
		logging.Debug("sync already in progress, skipping")
		return
	}
	s.syncInProgress = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.syncInProgress = false
		s.mu.Unlock()
	}()

	syncCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	if _, err := s.engine.Sync(syncCtx); err != nil {
		logging.Error("periodic sync failed", err)
		return
	}

	s.mu.Lock()
	s.lastSyncTime = time.Now()
	s.mu.Unlock()
}

// SyncNow triggers an immediate sync and waits for completion.
func (s *Scheduler) SyncNow(ctx context.Context) error {
	syncCtx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	_, err := s.engine.Sync(syncCtx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.lastSyncTime = time.Now()
	s.mu.Unlock()
	return nil
}

// Status describes the scheduler state for the UI.
type Status struct {
	IsRunning      bool       `json:"is_running"`
	SyncInProgress bool       `json:"sync_in_progress"`
	LastSyncTime   *time.Time `json:"last_sync_time,omitempty"`
}

// GetStatus returns the current scheduler state.
func (s *Scheduler) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		IsRunning:      s.isRunning,
		SyncInProgress: s.syncInProgress,
	}
	if !s.lastSyncTime.IsZero() {
		t := s.lastSyncTime
		status.LastSyncTime = &t
	}
	return status
}
