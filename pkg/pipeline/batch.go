package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ExecuteBatch runs independent samples concurrently, at most concurrency at
// a time (DefaultConcurrency when concurrency < 1). Results are returned in
// the order of batch. The first failure cancels the samples not yet started
// and is returned annotated with the failing input.
func (r *Runner) ExecuteBatch(ctx context.Context, batch []Options, concurrency int) ([]*Result, error) {
	if concurrency < 1 {
		concurrency = DefaultConcurrency()
	}
	results := make([]*Result, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, opts := range batch {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", opts.Input, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	r.Logger.Info("batch complete", "samples", len(batch), "concurrency", concurrency)
	return results, nil
}
