//go:build integration

package integration

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/adapters/clients/acl"
	"github.com/jsamuelsen/age-service/internal/adapters/flags"
	httpadapter "github.com/jsamuelsen/age-service/internal/adapters/http"
	"github.com/jsamuelsen/age-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/age-service/internal/app"
	"github.com/jsamuelsen/age-service/internal/platform/config"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testClientConfig returns a minimal config for integration testing.
func testClientConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "integration-test-service",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
	}
}

// ageStack is one in-process age service.
type ageStack struct {
	server  *httptest.Server
	metrics *metrics.Metrics
	flags   *flags.Static
	remote  *acl.AgeClient
}

// newAgeStack starts the full router. A non-empty peerURL wires the remote
// calculator to it.
func newAgeStack(t testing.TB, peerURL string, mutate func(*clients.Config)) *ageStack {
	t.Helper()

	gin.SetMode(gin.TestMode)

	stack := &ageStack{
		metrics: metrics.New(prometheus.NewRegistry()),
		flags:   flags.NewStatic(nil),
	}

	registry := ports.NewHealthRegistry()
	svcCfg := app.AgeServiceConfig{
		Flags:   stack.flags,
		Metrics: stack.metrics,
		Logger:  discardLogger(),
	}

	if peerURL != "" {
		clientCfg := testClientConfig(peerURL)
		clientCfg.ServiceName = acl.DefaultAgeServiceName
		if mutate != nil {
			mutate(clientCfg)
		}

		client, err := clients.New(clientCfg)
		require.NoError(t, err)

		stack.remote = acl.NewAgeClient(acl.AgeClientConfig{Client: client, Logger: discardLogger()})
		require.NoError(t, registry.Register(stack.remote))
		svcCfg.Remote = stack.remote
	}

	routerCfg := httpadapter.NewDefaultRouterConfig(
		discardLogger(),
		&config.AppConfig{Name: "age-service", Version: "integration", Environment: "test"},
		&config.AuthConfig{},
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("integration", "none", "now"), stack.metrics.Handler()),
		handlers.NewAgeHandler(app.NewAgeService(svcCfg)),
	)
	routerCfg.Metrics = stack.metrics

	engine := gin.New()
	httpadapter.SetupRouter(engine, routerCfg)

	stack.server = httptest.NewServer(engine)
	t.Cleanup(stack.server.Close)

	return stack
}
