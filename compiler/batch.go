package compiler

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunBatched runs worker over items in consecutive chunks of batchSize. Items
// of a chunk run concurrently and a chunk completes before the next starts.
// Results keep the input order. The first error aborts the run and no partial
// results are returned. A batchSize below 1 means DefaultBatchSize.
func RunBatched[I, O any](ctx context.Context, items []I, batchSize int, worker func(context.Context, I) (O, error)) ([]O, error) {
	return RunBatchedLimited(ctx, items, batchSize, nil, worker)
}

// RunBatchedLimited is RunBatched with every worker start gated by limiter.
// A nil limiter means no pacing.
func RunBatchedLimited[I, O any](ctx context.Context, items []I, batchSize int, limiter *rate.Limiter, worker func(context.Context, I) (O, error)) ([]O, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	results := make([]O, len(items))
	for start := 0; start < len(items); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+batchSize, len(items))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}
				out, err := worker(gctx, items[i])
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}
