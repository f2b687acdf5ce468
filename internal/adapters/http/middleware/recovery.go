package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

// Recovery returns middleware that turns a panic into a 500 error envelope
// and logs it with the stack. It must be first in the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			traceID := dto.GetTraceID(c)

			logging.FromContextOr(c.Request.Context(), logger).Error("panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("path", c.Request.URL.Path),
				slog.String("method", c.Request.Method),
				slog.String("trace_id", traceID),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}

			dto.AbortWithErrorCode(c, dto.ErrorCodeInternal, "an internal error occurred")
		}()

		c.Next()
	}
}
