// Package clients provides HTTP client adapters for downstream services.
package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Client errors are infrastructure failures. Callers translate them into
// domain errors.
var (
	// ErrCircuitOpen is returned when the circuit breaker blocks a request.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is used.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// StatusError reports a retryable server-side HTTP status.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
