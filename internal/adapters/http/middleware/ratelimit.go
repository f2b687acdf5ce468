package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/platform/ratelimit"
)

// RateLimit returns middleware that limits requests per client IP and
// answers 429 RATE_LIMITED once a client's bucket is empty. A nil limiter
// lets every request through. m may be nil.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP(), time.Now()) {
			c.Next()
			return
		}

		m.IncrementRateLimited()

		c.Header("Retry-After", "1")
		dto.AbortWithErrorCode(c, dto.ErrorCodeRateLimited, "rate limit exceeded")
	}
}
