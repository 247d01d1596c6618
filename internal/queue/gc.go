package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// purgeTimeout bounds a single DLQ pass
const purgeTimeout = 2 * time.Minute

// GarbageCollector drops dead-lettered compile and recompute jobs once they are older than retention.
// A pass runs at Start and then every interval.
type GarbageCollector struct {
	purger    DLQPurger
	interval  time.Duration
	retention time.Duration
	purged    atomic.Int64
	logger    *zap.Logger
}

// NewGarbageCollector creates a collector. A nil logger discards output.
func NewGarbageCollector(purger DLQPurger, interval, retention time.Duration, logger *zap.Logger) *GarbageCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GarbageCollector{
		purger:    purger,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Purged reports how many messages the collector has removed since it was created
func (gc *GarbageCollector) Purged() int64 {
	return gc.purged.Load()
}

// Start runs passes until ctx is cancelled and returns ctx's error
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.pass(ctx)

	ticker := time.NewTicker(gc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			gc.pass(ctx)
		}
	}
}

func (gc *GarbageCollector) pass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := gc.collect(ctx); err != nil {
		gc.logger.Error("dlq_gc_failed", zap.Error(err))
	}
}

func (gc *GarbageCollector) collect(ctx context.Context) error {
	if gc.purger == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, purgeTimeout)
	defer cancel()

	n, err := gc.purger.PurgeOlderThan(ctx, gc.retention)
	if err != nil {
		return fmt.Errorf("purge dead-lettered jobs: %w", err)
	}
	if n > 0 {
		total := gc.purged.Add(int64(n))
		gc.logger.Info("dlq_gc_purged",
			zap.Int("count", n),
			zap.Int64("total", total),
			zap.Duration("retention", gc.retention),
		)
	}
	return nil
}
