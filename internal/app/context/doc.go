// Package context provides scoped memoization for application services.
//
// A RequestContext lives for one unit of work, such as a batch. Work keyed
// by the same string is performed at most once, even when several
// goroutines ask for it at the same time:
//
//	rc := appctx.New(ctx)
//
//	calc, err := appctx.Fetch(ctx, rc, key, func(ctx context.Context) (*domain.Calculation, error) {
//	    return s.Calculate(ctx, in)
//	})
//
// Successful results are kept for the life of rc. Errors are shared with
// callers already waiting on the same key but are not cached.
package context
