package scheduler

import (
	"context"
	"log/slog"
	"time"

	"tracksuit_watcher/internal/domain"
)

// Watcher defines the interface for one poll cycle.
type Watcher interface {
	RunCycle(ctx context.Context) (*domain.CycleStats, error)
}

// Scheduler drives the poll loop: one cycle immediately, then one per tick,
// until the context is cancelled. Cycle errors are logged and the loop keeps
// going; the process favors availability over failing loudly.
type Scheduler struct {
	watcher      Watcher
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger
}

func NewScheduler(watcher Watcher, interval, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		watcher:      watcher,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	if _, err := s.watcher.RunCycle(cycleCtx); err != nil {
		s.logger.Error("cycle failed", "error", err)
	}
}
