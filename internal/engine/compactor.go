package engine

import (
	"context"
	"log"
	"time"
)

// RunCompactor periodically deletes reports whose expiry has passed.
// This is storage hygiene only: every read path already filters on
// expires_at, so correctness never depends on this loop running.
// Blocks until ctx is cancelled.
func (e *Engine) RunCompactor(ctx context.Context, interval time.Duration) error {
	ticker := e.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			purged, err := e.store.PurgeExpiredReports(e.clock.Now().UTC())
			if err != nil {
				log.Printf("compactor: failed to purge expired reports: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("compactor: purged %d expired reports", purged)
				if e.metrics != nil {
					e.metrics.PurgedReports.Add(float64(purged))
				}
			}
		}
	}
}
