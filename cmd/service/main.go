// Package main is the entry point for the age service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/age-service/internal/adapters/flags"
	"github.com/jsamuelsen/age-service/internal/adapters/http"
	"github.com/jsamuelsen/age-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/age-service/internal/app"
	"github.com/jsamuelsen/age-service/internal/platform/config"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/platform/ratelimit"
	"github.com/jsamuelsen/age-service/internal/platform/telemetry"
	"github.com/jsamuelsen/age-service/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load and validate configuration (fail fast)
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 3. Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 4. Prometheus metrics and feature flags
	m := metrics.New(prometheus.DefaultRegisterer)

	featureFlags := flags.NewStatic(map[string]bool{
		app.FlagStrictDateValidation: cfg.Age.StrictValidation,
	})
	featureFlags.SetInt(app.FlagBatchConcurrency, cfg.Age.BatchConcurrency)

	// 5. Optional remote calculator (ACL pattern)
	healthRegistry := ports.NewHealthRegistry()

	remote, err := newRemoteCalculator(cfg, logger)
	if err != nil {
		return err
	}

	if remote != nil {
		if err := healthRegistry.Register(remote); err != nil {
			return fmt.Errorf("registering age calculator health check: %w", err)
		}
	}

	// 6. Application service
	ageCfg := app.AgeServiceConfig{
		Flags:            featureFlags,
		Metrics:          m,
		Executor:         app.NewExecutor(telemetry.Tracer()),
		Logger:           logger,
		MaxBatchSize:     cfg.Age.MaxBatchSize,
		BatchConcurrency: cfg.Age.BatchConcurrency,
	}
	if remote != nil {
		ageCfg.Remote = remote
	}
	ageService := app.NewAgeService(ageCfg)

	// 7. Handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo, m.Handler())
	ageHandler := handlers.NewAgeHandler(ageService)

	// 8. Server and router
	server, err := http.New(&cfg.Server, logger)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App, &cfg.Auth, healthHandler, ageHandler)
	routerCfg.Metrics = m
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimiter = ratelimit.New(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.IdleTTL)
	}
	http.SetupRouter(server.Engine(), routerCfg)

	// 9. Serve until signaled
	serverErr := server.Start()

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// newRemoteCalculator returns nil when no peer calculator is configured.
func newRemoteCalculator(cfg *config.Config, logger *slog.Logger) (*acl.AgeClient, error) {
	svc := cfg.Services.AgeCalculator
	if !svc.Enabled {
		return nil, nil //nolint:nilnil // nil client means local-only
	}

	name := svc.Name
	if name == "" {
		name = acl.DefaultAgeServiceName
	}

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     svc.BaseURL,
		ServiceName: name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating age calculator client: %w", err)
	}

	logger.Info("remote age calculator enabled", slog.String("base_url", svc.BaseURL))

	return acl.NewAgeClient(acl.AgeClientConfig{Client: httpClient, Logger: logger}), nil
}

// waitForShutdown blocks until a shutdown signal is received or the server
// fails, then drains in-flight requests.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
