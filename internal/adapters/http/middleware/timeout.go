package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

// Timeout returns middleware that puts a deadline on the request context.
// Handlers run on the request goroutine and must honor ctx.Done(). If the
// deadline passed and the handler wrote nothing, a 504 TIMEOUT is written.
// A non-positive timeout disables the middleware.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	if timeout <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Writer.Written() {
			return
		}

		logging.FromContext(ctx).Warn("request timeout",
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
			slog.Duration("timeout", timeout),
		)

		dto.AbortWithErrorCode(c, dto.ErrorCodeTimeout, "request timeout exceeded")
	}
}
