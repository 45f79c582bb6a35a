package journal

import (
	"context"
	gosync "sync"
)

// SyncStatus is the coarse state a UI banner shows for synchronization.
type SyncStatus int

const (
	// StatusSynced means the queue is empty and the device is online.
	StatusSynced SyncStatus = iota
	// StatusOffline means mutations are being captured locally.
	StatusOffline
	// StatusSyncing means a flush is in progress.
	StatusSyncing
	// StatusQueued means the device is online but mutations still await
	// replay (for example after a transient failure).
	StatusQueued
)

func (s SyncStatus) String() string {
	switch s {
	case StatusSynced:
		return "synced"
	case StatusOffline:
		return "offline"
	case StatusSyncing:
		return "syncing"
	case StatusQueued:
		return "queued"
	default:
		return "unknown"
	}
}

type statusState struct {
	mu      gosync.Mutex
	current SyncStatus
}

func (s *statusState) set(status SyncStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = status
}

func (s *statusState) get() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Status reports the current synchronization state for display.
func (s *Service) Status() SyncStatus {
	return s.status.get()
}

// refreshStatus recomputes the banner state from connectivity and queue
// depth.
func (s *Service) refreshStatus(ctx context.Context) {
	if !s.monitor.IsOnline() {
		s.status.set(StatusOffline)
		return
	}
	n, err := s.engine.QueueLength(ctx)
	if err != nil || n > 0 {
		s.status.set(StatusQueued)
		return
	}
	s.status.set(StatusSynced)
}
