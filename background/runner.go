package background

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"estately/outbox"
	"estately/property"
)

// Runner owns the periodic jobs that run next to the HTTP server: the
// outbox sweep and the view-counter flush.
type Runner struct {
	sweeper *outbox.Sweeper
	views   *property.ViewCounter
	logger  *zap.Logger

	sweepInterval time.Duration
	flushInterval time.Duration
}

func NewRunner(sweeper *outbox.Sweeper, views *property.ViewCounter, logger *zap.Logger, sweepInterval, flushInterval time.Duration) *Runner {
	return &Runner{
		sweeper:       sweeper,
		views:         views,
		logger:        logger,
		sweepInterval: sweepInterval,
		flushInterval: flushInterval,
	}
}

// Run blocks until ctx is cancelled, then returns ctx.Err() once both
// loops have stopped.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.sweeper.Run(ctx, r.sweepInterval)
	})

	g.Go(func() error {
		ticker := time.NewTicker(r.flushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := r.views.Flush(ctx); err != nil {
					r.logger.Warn("view counter flush failed", zap.Error(err))
				}
			}
		}
	})

	return g.Wait()
}
