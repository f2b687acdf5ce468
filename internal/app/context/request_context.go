package context

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// RequestContext memoizes keyed work for the lifetime of one unit of work,
// such as a batch.
type RequestContext struct {
	ctx    context.Context
	cache  sync.Map
	flight singleflight.Group
}

// New creates a new RequestContext wrapping the given context.
func New(ctx context.Context) *RequestContext {
	return &RequestContext{ctx: ctx}
}

// GetOrFetch returns the cached value for key, or runs fetchFn once for
// all concurrent callers of key and caches a successful result.
func (rc *RequestContext) GetOrFetch(key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	if cached, ok := rc.cache.Load(key); ok {
		return cached, nil
	}

	value, err, _ := rc.flight.Do(key, func() (any, error) {
		if cached, ok := rc.cache.Load(key); ok {
			return cached, nil
		}

		v, err := fetchFn(rc.ctx)
		if err != nil {
			return nil, err
		}

		rc.cache.Store(key, v)

		return v, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Fetch is the typed form of GetOrFetch. A nil rc disables memoization
// and calls fetchFn directly with ctx.
func Fetch[T any](ctx context.Context, rc *RequestContext, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	if rc == nil {
		return fetchFn(ctx)
	}

	var zero T

	v, err := rc.GetOrFetch(key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("request context: key %q holds %T, not %T", key, v, zero)
	}

	return typed, nil
}
