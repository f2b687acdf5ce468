package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/age-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/age-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/age-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/age-service/internal/platform/config"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/platform/ratelimit"
	"github.com/jsamuelsen/age-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

const (
	// BatchScope grants access to the batch endpoint when auth is enabled.
	BatchScope = "ages:batch"

	// AdminRole grants access to every endpoint when auth is enabled.
	AdminRole = "admin"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig controls the batch endpoint guard. Nil or disabled leaves
	// every endpoint open.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles the /-/ endpoints.
	HealthHandler *handlers.HealthHandler

	// AgeHandler handles the /api/v1 age endpoints.
	AgeHandler *handlers.AgeHandler

	// RateLimiter limits /api/v1 requests per client IP. Nil disables it.
	RateLimiter *ratelimit.Limiter

	// Metrics counts rate limited requests. May be nil.
	Metrics *metrics.Metrics

	// Timeout is the /api/v1 request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Global middleware, first to last:
//  1. Recovery
//  2. Context logger
//  3. Request ID
//  4. Correlation ID
//  5. OpenTelemetry tracing and HTTP metrics
//  6. Logging (skips /-/)
//
// /api/v1 adds the rate limiter and the request timeout. Health checks
// get neither.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(serviceName(cfg.AppConfig))...)
	engine.Use(middleware.Logging(cfg.Logger))

	engine.NoRoute(func(c *gin.Context) {
		dto.AbortWithErrorCode(c, dto.ErrorCodeNotFound, "route not found")
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Metrics))
	apiV1.Use(middleware.Timeout(cfg.Timeout))

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers the age endpoints. With auth enabled the batch
// endpoint needs a subject holding the batch scope or the admin role.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AgeHandler == nil {
		return
	}

	var batchGuard []gin.HandlerFunc
	if cfg.AuthConfig != nil && cfg.AuthConfig.Enabled {
		batchGuard = append(batchGuard,
			middleware.RequireAuth(cfg.AuthConfig),
			middleware.RequireAny(cfg.AuthConfig,
				middleware.HasScope(BatchScope),
				middleware.HasRole(AdminRole),
			),
		)
	}

	cfg.AgeHandler.RegisterRoutes(rg, batchGuard...)
}

func serviceName(app *config.AppConfig) string {
	if app == nil || app.Name == "" {
		return "age-service"
	}

	return app.Name
}

// NewDefaultRouterConfig creates a RouterConfig with the default timeout.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	authCfg *config.AuthConfig,
	healthHandler *handlers.HealthHandler,
	ageHandler *handlers.AgeHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AuthConfig:    authCfg,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		AgeHandler:    ageHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
