package clients

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/jsamuelsen/age-service/internal/platform/config"
)

// retryPolicy decides whether a failed attempt is retried and how long to
// wait before the next one.
type retryPolicy struct {
	cfg config.RetryConfig

	// jitter returns a value in [0,1). Tests pin it.
	jitter func() float64
}

func newRetryPolicy(cfg config.RetryConfig) retryPolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	return retryPolicy{cfg: cfg, jitter: rand.Float64}
}

// backoff returns initial * multiplier^(attempt-1), capped at the max
// interval, spread by up to JitterFactor in either direction. attempt is
// the 1-based number of the retry about to run.
func (p retryPolicy) backoff(attempt int) time.Duration {
	d := float64(p.cfg.InitialInterval) * math.Pow(p.cfg.Multiplier, float64(attempt-1))
	d = math.Min(d, float64(p.cfg.MaxInterval))

	spread := p.jitter()*2 - 1
	d += d * p.cfg.JitterFactor * spread

	return time.Duration(d)
}

// classify turns the outcome of one attempt into a retry decision. A 5xx
// response has its body closed and is reported as *StatusError.
func (p retryPolicy) classify(resp *http.Response, err error) (retry bool, attemptErr error) {
	if err != nil {
		return isRetryableError(err), err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		_ = resp.Body.Close()
		return true, &StatusError{StatusCode: resp.StatusCode}
	}

	return false, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableError reports whether err is a transient network failure.
// Cancellation by the caller is never retried.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
