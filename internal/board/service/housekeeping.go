package service

import (
	"log/slog"
	"time"

	"github.com/uplist/uplist/pkg/httpx"
	"github.com/uplist/uplist/pkg/tokenx"
)

// HousekeepingService periodically sweeps in-memory security state: revoked
// token IDs whose tokens have expired anyway, and lockout records whose
// window or lockout has elapsed. Without it both maps grow without bound.
type HousekeepingService struct {
	Revocations *tokenx.RevocationList
	Lockout     *httpx.LockoutLimiter
	Logger      *slog.Logger
	Interval    time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(revocations *tokenx.RevocationList, lockout *httpx.LockoutLimiter, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Lockout:     lockout,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// Non-blocking; call Stop() to shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	var swept, pruned int

	if s.Revocations != nil {
		swept = s.Revocations.Sweep(time.Now())
	}
	if s.Lockout != nil {
		pruned = s.Lockout.Prune()
	}

	s.Logger.Info("housekeeping sweep completed",
		"revocations_swept", swept,
		"lockout_records_pruned", pruned,
	)
}
