// Package sweep periodically runs the completion check over enhancements that
// still wait on generator output. It is pure acceleration for dashboards and
// metrics; the read path performs the same check lazily and stays the source
// of truth.
package sweep

import (
	"context"
	"time"

	"enhancehub-backend/internal/shared/telemetry"
)

const (
	defaultInterval  = 30 * time.Second
	defaultBatchSize = 200
)

// PendingRefresher is the slice of the enhancements service the sweeper needs.
type PendingRefresher interface {
	RefreshPending(ctx context.Context, limit int) (int, error)
}

// Sweeper drives periodic refreshes.
type Sweeper struct {
	Refresher PendingRefresher
	Interval  time.Duration
	BatchSize int
}

// New builds a Sweeper with defaults filled in.
func New(refresher PendingRefresher, interval time.Duration, batchSize int) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Sweeper{Refresher: refresher, Interval: interval, BatchSize: batchSize}
}

// Run sweeps immediately and then once per interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		s.Once(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Once performs a single sweep and reports how many enhancements completed.
func (s *Sweeper) Once(ctx context.Context) int {
	start := time.Now()
	completed, err := s.Refresher.RefreshPending(ctx, s.BatchSize)
	if err != nil {
		if ctx.Err() == nil {
			telemetry.Error("sweep.failed", map[string]any{
				"error": err.Error(),
			})
		}
		return 0
	}
	if completed > 0 {
		telemetry.Info("sweep.completed", map[string]any{
			"newly_completed": completed,
			"duration_ms":     time.Since(start).Milliseconds(),
		})
	}
	return completed
}
