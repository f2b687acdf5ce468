package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/age-service/internal/mocks"
	"github.com/jsamuelsen/age-service/internal/platform/metrics"
	"github.com/jsamuelsen/age-service/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("1.0.0", "abc123", "2024-01-15T10:00:00Z")

	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, "2024-01-15T10:00:00Z", bi.BuildTime)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/live", nil)

	handler.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp livenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name           string
		result         *ports.HealthResult
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "all checks healthy",
			result: &ports.HealthResult{
				Status: ports.HealthStatusHealthy,
				Checks: map[string]*ports.CheckResult{
					"age-calculator": {Status: ports.HealthStatusHealthy},
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
		{
			name: "optional dependency down",
			result: &ports.HealthResult{
				Status: ports.HealthStatusDegraded,
				Checks: map[string]*ports.CheckResult{
					"age-calculator": {Status: ports.HealthStatusDegraded, Message: "connection refused"},
				},
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"degraded"`,
		},
		{
			name: "required dependency down",
			result: &ports.HealthResult{
				Status: ports.HealthStatusUnhealthy,
				Checks: map[string]*ports.CheckResult{
					"config": {Status: ports.HealthStatusUnhealthy, Message: "missing"},
				},
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"status":"unhealthy"`,
		},
		{
			name:           "no checks registered",
			result:         &ports.HealthResult{Status: ports.HealthStatusHealthy, Checks: map[string]*ports.CheckResult{}},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"healthy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := mocks.NewMockHealthRegistry(t)
			registry.EXPECT().CheckAll(mock.Anything).Return(tt.result)

			handler := NewHealthHandler(registry, BuildInfo{}, nil)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/-/ready", nil)

			handler.Readiness(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}

func TestHealthHandler_BuildInfoHandler(t *testing.T) {
	buildInfo := BuildInfo{
		Version:   "1.2.3",
		Commit:    "def456",
		BuildTime: "2024-02-01T12:00:00Z",
		GoVersion: "go1.25.7",
	}

	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), buildInfo, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/-/build", nil)

	handler.BuildInfoHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp BuildInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, buildInfo, resp)
}

func TestHealthHandler_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.IncrementRateLimited()

	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{}, m.Handler())

	router := gin.New()
	handler.RegisterHealthRoutesOnEngine(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "age_service_rate_limited_total 1")
}

func TestHealthHandler_RegisterHealthRoutes(t *testing.T) {
	handler := NewHealthHandler(mocks.NewMockHealthRegistry(t), BuildInfo{Version: "test"}, nil)

	router := gin.New()
	handler.RegisterHealthRoutes(router.Group("/-"))

	routeMap := make(map[string]bool)
	for _, r := range router.Routes() {
		routeMap[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{"GET /-/live", "GET /-/ready", "GET /-/build", "GET /-/metrics"} {
		assert.True(t, routeMap[expected], "missing route: %s", expected)
	}
}
