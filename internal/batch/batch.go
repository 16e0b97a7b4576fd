// Package batch fans independent work items out over a bounded pool of
// goroutines and collects the results in input order.
package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Result pairs the outcome of one item with its input position.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Workers normalizes a worker count: n <= 0 means one per CPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Map applies fn to every item with at most workers goroutines in flight.
// Results keep the order of items. The first error cancels the context
// passed to the remaining calls and is returned.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(items))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(Workers(workers))
	for i, item := range items {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			v, err := fn(egctx, item)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Settle applies fn to every item and never stops early. Each item's
// error is kept in its Result so the caller can skip failures.
func Settle[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	out := make([]Result[R], len(items))

	var eg errgroup.Group
	eg.SetLimit(Workers(workers))
	for i, item := range items {
		eg.Go(func() error {
			out[i].Index = i
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Value, out[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}
