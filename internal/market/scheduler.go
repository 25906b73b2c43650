package market

import (
	"log/slog"
	"time"
)

// DefaultInterval is the fluctuation cadence when config leaves it unset.
const DefaultInterval = 5 * time.Minute

// Scheduler invokes the engine's Tick at a fixed interval. The cadence
// lives here, outside the engine: Tick itself knows nothing about time.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
	quit     chan struct{}
}

// NewScheduler creates a scheduler for the engine. Non-positive
// intervals fall back to DefaultInterval.
func NewScheduler(engine *Engine, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		engine:   engine,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

// Run ticks the engine until Stop is called. Blocks; run it in its own
// goroutine.
func (s *Scheduler) Run() {
	slog.Info("price scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.engine.Tick(); err != nil {
				slog.Error("price tick failed", "error", err)
			}
		case <-s.quit:
			slog.Info("price scheduler stopped")
			return
		}
	}
}

// Stop halts the scheduler. Safe to call once.
func (s *Scheduler) Stop() {
	close(s.quit)
}
