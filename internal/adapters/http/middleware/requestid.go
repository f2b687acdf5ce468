// Package middleware provides the gin middleware chain of the age API.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

const (
	// HeaderRequestID is the header name for request ID.
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key for the request ID.
	ContextKeyRequestID = "request_id"
)

// RequestID returns middleware that extracts or generates a request ID.
// A missing or malformed X-Request-ID header is replaced with a UUID v4.
// The ID is echoed in the response, stored on the gin context and the
// request context, and attached to the context logger.
func RequestID() gin.HandlerFunc {
	return createIDMiddleware(idMiddlewareConfig{
		headerName: HeaderRequestID,
		contextKey: ContextKeyRequestID,
		enrichers: []func(ctx context.Context, id string) context.Context{
			ContextWithRequestID,
			logging.WithRequestID,
		},
	})
}

// GetRequestID extracts the request ID from the gin.Context.
// Returns empty string if not set.
func GetRequestID(c *gin.Context) string {
	return getIDFromContext(c, ContextKeyRequestID)
}

// MustGetRequestID is GetRequestID with "unknown" for a missing ID.
func MustGetRequestID(c *gin.Context) string {
	if id := GetRequestID(c); id != "" {
		return id
	}

	return "unknown"
}
