// Package parallel splits index ranges across goroutines.
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Parallelize divides [0, items) into one chunk per CPU core and calls fn
// for each chunk concurrently. The first error cancels ctx for the
// remaining chunks and is returned.
func Parallelize(ctx context.Context, items int, fn func(ctx context.Context, start, end int) error) error {
	if items == 0 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		s, e := start, end
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, s, e)
		})
	}
	return g.Wait()
}

// ParallelizeWithThreshold runs fn sequentially over the whole range when
// items is at most threshold, and in parallel otherwise.
func ParallelizeWithThreshold(ctx context.Context, items, threshold int, fn func(ctx context.Context, start, end int) error) error {
	if items <= threshold {
		if items == 0 {
			return nil
		}
		return fn(ctx, 0, items)
	}
	return Parallelize(ctx, items, fn)
}
