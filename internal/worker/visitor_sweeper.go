package worker

import (
	"context"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultSweepInterval = time.Minute
	defaultIdleTTL       = 3 * time.Minute
)

// Forgetter drops state for clients idle longer than the given duration.
type Forgetter interface {
	Forget(idle time.Duration) int
	Visitors() int
}

// VisitorSweeper periodically evicts idle rate limit buckets so the per-IP
// map stays bounded by recent traffic.
type VisitorSweeper struct {
	limiter  Forgetter
	interval time.Duration
	idle     time.Duration
}

// NewVisitorSweeper uses a one minute interval and a three minute idle TTL
// when the corresponding argument is nil.
func NewVisitorSweeper(limiter Forgetter, interval, idle *time.Duration) *VisitorSweeper {
	intervalToSet := defaultSweepInterval
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}
	idleToSet := defaultIdleTTL
	if idle != nil && *idle > 0 {
		idleToSet = *idle
	}
	return &VisitorSweeper{
		limiter:  limiter,
		interval: intervalToSet,
		idle:     idleToSet,
	}
}

// Start blocks until ctx is done.
func (w *VisitorSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: visitor sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle", w.idle))
	for {
		select {
		case <-ticker.C:
			w.Check()
		case <-ctx.Done():
			logger.Info("Worker: visitor sweeper stopping")
			return
		}
	}
}

func (w *VisitorSweeper) Check() int {
	start := time.Now()
	dropped := w.limiter.Forget(w.idle)

	logger.Debug("Worker: idle visitors swept",
		zap.Duration("ms", time.Since(start)),
		zap.Int("dropped", dropped),
		zap.Int("remaining", w.limiter.Visitors()))
	return dropped
}
