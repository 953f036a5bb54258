package worker

import (
	"context"
	"log/slog"
	"time"
)

// RetentionStore defines the store operations needed by the retention worker.
type RetentionStore interface {
	PurgeOldDismissed(ctx context.Context, maxAge time.Duration, now time.Time) (int64, error)
}

// RetentionWorker periodically purges insights that were dismissed long ago.
// Active and acted-on insights are never touched.
type RetentionWorker struct {
	store    RetentionStore
	interval time.Duration
	maxAge   time.Duration
}

// NewRetentionWorker creates a worker with the given store, cycle interval,
// and dismissed-insight retention age.
func NewRetentionWorker(store RetentionStore, interval, maxAge time.Duration) *RetentionWorker {
	return &RetentionWorker{
		store:    store,
		interval: interval,
		maxAge:   maxAge,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT run immediately on start; the first purge happens after one interval.
func (w *RetentionWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "insight-retention",
		"interval", w.interval.String(),
		"max_age", w.maxAge.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "insight-retention",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runPurge(ctx)
		}
	}
}

// runPurge executes a single purge cycle.
func (w *RetentionWorker) runPurge(ctx context.Context) {
	start := time.Now()

	purged, err := w.store.PurgeOldDismissed(ctx, w.maxAge, start.UTC())
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return
		}
		slog.Error("purge failed",
			"component", "worker",
			"action", "purge_failed",
			"error", err,
		)
		return
	}

	if purged > 0 {
		slog.Info("purge cycle completed",
			"component", "worker",
			"action", "purge_complete",
			"purged", purged,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
