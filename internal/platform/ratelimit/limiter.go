// Package ratelimit provides a per-client token bucket limiter.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long a client's bucket is kept after its last request.
const DefaultIdleTTL = 10 * time.Minute

// sweepEvery is the number of Allow calls between idle-bucket sweeps.
const sweepEvery = 512

// Limiter applies a token bucket per client key and evicts idle buckets.
// A nil *Limiter allows everything.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a limiter allowing rps sustained requests with the given
// burst per key. It returns nil when rps or burst is not positive.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether key may make one request at now. Blank keys are
// never limited.
func (l *Limiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	return allowed
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.buckets)
}

func (l *Limiter) sweep(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
		}
	}
}
