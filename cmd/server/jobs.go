// Package main provides the schedule bot server entry point.
package main

import (
	"context"
	"time"

	"github.com/glebkhr/schedbot-go/internal/logger"
	"github.com/glebkhr/schedbot-go/internal/source"
)

// warmupStagger spaces out the initial fetches so the export endpoint is
// not hit for every source at once.
const warmupStagger = 2 * time.Second

// warmSources preloads every registered source once. Failures are logged
// and left for the first user request to retry.
func warmSources(ctx context.Context, store *source.Store, fetchTimeout time.Duration, log *logger.Logger) {
	log = log.WithModule("warmup")

	for i, src := range store.Sources() {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(warmupStagger):
			}
		}

		// The budget covers the retry loop, not a single attempt.
		loadCtx, cancel := context.WithTimeout(ctx, 4*fetchTimeout)
		_, err := store.Get(loadCtx, src.ID)
		cancel()

		if err != nil {
			log.WithSource(src.ID).WithError(err).Warn("Warmup fetch failed")
			continue
		}
		log.WithSource(src.ID).Info("Source warmed")
	}
}
