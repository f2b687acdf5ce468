package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxIDLength bounds caller-supplied IDs before they reach logs and headers.
const maxIDLength = 128

// idMiddlewareConfig configures the ID middleware behavior.
type idMiddlewareConfig struct {
	headerName string
	contextKey string
	enrichers  []func(ctx context.Context, id string) context.Context
}

// createIDMiddleware creates middleware that extracts or generates an ID.
// Shared by the request ID and correlation ID middleware.
func createIDMiddleware(cfg idMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.headerName)
		if !validID(id) {
			id = uuid.New().String()
		}

		c.Set(cfg.contextKey, id)
		c.Header(cfg.headerName, id)

		ctx := c.Request.Context()
		for _, enrich := range cfg.enrichers {
			ctx = enrich(ctx, id)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// validID accepts non-empty printable ASCII without spaces, up to maxIDLength.
func validID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}

	for i := range len(id) {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}

	return true
}

// getIDFromContext extracts an ID from the gin context by key.
func getIDFromContext(c *gin.Context, key string) string {
	if id, exists := c.Get(key); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}

	return ""
}
