package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

const (
	// HeaderCorrelationID is the header name for correlation ID.
	// Unlike request ID (per-request), correlation ID tracks an entire
	// business transaction across multiple services.
	HeaderCorrelationID = "X-Correlation-ID"

	// ContextKeyCorrelationID is the gin context key for the correlation ID.
	ContextKeyCorrelationID = "correlation_id"
)

// CorrelationID returns middleware that handles correlation ID propagation.
// An upstream X-Correlation-ID is kept; otherwise this request starts the
// transaction and gets a new UUID v4. The outbound age calculator client
// reads it back from the request context.
func CorrelationID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderCorrelationID,
		contextKey: ContextKeyCorrelationID,
		enrichers: []func(ctx context.Context, id string) context.Context{
			ContextWithCorrelationID,
			logging.WithCorrelationID,
		},
	})
}

// GetCorrelationID extracts the correlation ID from the gin.Context.
// Returns empty string if not set.
func GetCorrelationID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyCorrelationID)
}

// MustGetCorrelationID is GetCorrelationID with "unknown" for a missing ID.
func MustGetCorrelationID(c *gin.Context) string {
	if id := GetCorrelationID(c); id != "" {
		return id
	}

	return "unknown"
}
