package clients

import (
	"sync"
	"time"

	"github.com/jsamuelsen/age-service/internal/platform/config"
)

// State represents the current state of the circuit breaker.
type State int

const (
	// StateClosed lets every request through.
	StateClosed State = iota

	// StateOpen blocks requests until the open timeout elapses.
	StateOpen

	// StateHalfOpen lets a limited number of trial requests through.
	StateHalfOpen
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerOption customizes a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithStateChange registers fn to run after every state transition. fn is
// called without the breaker's lock held.
func WithStateChange(fn func(from, to State)) BreakerOption {
	return func(cb *CircuitBreaker) { cb.onStateChange = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) { cb.now = now }
}

// CircuitBreaker guards a downstream dependency.
//
//   - Closed → Open after MaxFailures consecutive failures
//   - Open → HalfOpen once Timeout has passed since the last failure
//   - HalfOpen → Closed after HalfOpenLimit consecutive successes
//   - HalfOpen → Open on any failure
type CircuitBreaker struct {
	mu        sync.Mutex
	state     State
	failures  int
	successes int
	trials    int
	openedAt  time.Time
	cfg       config.CircuitBreakerConfig

	onStateChange func(from, to State)
	now           func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker.
func NewCircuitBreaker(cfg config.CircuitBreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		state: StateClosed,
		cfg:   cfg,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(cb)
	}

	return cb
}

// Allow reports whether a request may proceed. An open breaker whose
// timeout has passed moves to half-open and admits the caller as a trial request.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()

	var (
		allowed bool
		from    = cb.state
	)

	switch cb.state {
	case StateClosed:
		allowed = true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cfg.Timeout {
			cb.setState(StateHalfOpen)
			cb.trials = 1
			allowed = true
		}
	case StateHalfOpen:
		if cb.trials < cb.cfg.HalfOpenLimit {
			cb.trials++
			allowed = true
		}
	}

	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)

	return allowed
}

// RecordSuccess records a successful request.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.trials--
		cb.successes++
		if cb.successes >= cb.cfg.HalfOpenLimit {
			cb.setState(StateClosed)
		}
	}

	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// RecordFailure records a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	from := cb.state

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.trials--
		cb.setState(StateOpen)
	}

	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

// Release gives back a half-open trial slot without counting the request
// as a success or a failure. Use it when the caller abandoned the request.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen && cb.trials > 0 {
		cb.trials--
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// setState must be called with the lock held.
func (cb *CircuitBreaker) setState(s State) {
	if cb.state == s {
		return
	}

	cb.state = s
	cb.failures = 0
	cb.successes = 0

	if s == StateOpen {
		cb.openedAt = cb.now()
		cb.trials = 0
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}
