package app

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PartialResult holds a result or an error for one unit of work.
type PartialResult[T any] struct {
	Value T
	Err   error
}

// ParallelPartialLimit runs fns with at most limit in flight and collects
// every outcome in input order. A failing fn never cancels its siblings.
// Work not yet started when ctx is done reports ctx.Err().
func ParallelPartialLimit[T any](
	ctx context.Context,
	limit int,
	fns ...func(context.Context) (T, error),
) []PartialResult[T] {
	results := make([]PartialResult[T], len(fns))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, fn := range fns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			value, err := fn(ctx)
			results[i] = PartialResult[T]{Value: value, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
