package journal

import (
	"context"
	"time"
)

// DefaultSweepInterval is the fallback cadence at which the queue is flushed
// even without a connectivity transition, so items stranded by transient
// failures are retried.
const DefaultSweepInterval = 1 * time.Minute

// TokenFunc supplies the current session token; it returns "" when no user
// is signed in, which skips the sweep.
type TokenFunc func() string

// Sweeper flushes the mutation queue whenever the device comes back online
// and on a periodic fallback tick.
type Sweeper struct {
	service  *Service
	token    TokenFunc
	interval time.Duration
	kick     chan struct{}
}

func NewSweeper(service *Service, token TokenFunc, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &Sweeper{
		service:  service,
		token:    token,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
	service.monitor.OnChange(func(online bool) {
		if online {
			s.Kick()
		} else {
			service.status.set(StatusOffline)
		}
	})
	return s
}

// Kick requests an immediate sweep. Safe to call from any goroutine; extra
// kicks while one is pending are coalesced.
func (s *Sweeper) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run sweeps until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		case <-ticker.C:
		}
		s.sweep(ctx)
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	token := s.token()
	if token == "" {
		return
	}
	if err := s.service.Sync(ctx, token); err != nil {
		s.service.logger.Warn(ctx, "background sync failed", "error", err)
	}
}
