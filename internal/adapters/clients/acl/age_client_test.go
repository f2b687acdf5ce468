package acl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/domain"
	"github.com/jsamuelsen/age-service/internal/platform/config"
	"github.com/jsamuelsen/age-service/internal/ports"
)

var (
	_ ports.AgeCalculator      = (*AgeClient)(nil)
	_ ports.HealthChecker      = (*AgeClient)(nil)
	_ ports.OptionalDependency = (*AgeClient)(nil)
)

func testConfig(baseURL string) *clients.Config {
	return &clients.Config{
		BaseURL:     baseURL,
		ServiceName: "age-calculator",
		Timeout:     time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
}

func newTestAgeClient(t *testing.T, handler http.HandlerFunc) *AgeClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	return NewAgeClient(AgeClientConfig{Client: client})
}

func TestNewAgeClient_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() {
		NewAgeClient(AgeClientConfig{})
	})
}

func TestAgeClient_Calculate_Success(t *testing.T) {
	client := newTestAgeClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/age", r.URL.Path)

		q := r.URL.Query()
		assert.Equal(t, "15", q.Get("birthDay"))
		assert.Equal(t, "6", q.Get("birthMonth"))
		assert.Equal(t, "1990", q.Get("birthYear"))
		assert.Equal(t, "14", q.Get("refDay"))
		assert.Equal(t, "6", q.Get("refMonth"))
		assert.Equal(t, "2023", q.Get("refYear"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"age":32,"source":"local"}`)
	})

	age, err := client.Calculate(context.Background(),
		domain.Date{Day: 15, Month: 6, Year: 1990},
		domain.Date{Day: 14, Month: 6, Year: 2023},
	)

	require.NoError(t, err)
	assert.Equal(t, 32, age)
}

func TestAgeClient_Calculate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		errCheck func(error) bool
		field    string
	}{
		{
			name:     "server error",
			status:   http.StatusInternalServerError,
			errCheck: domain.IsUnavailable,
		},
		{
			name:     "bad request with field details",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":"VALIDATION_ERROR","message":"invalid","details":{"refYear":"is required"}}}`,
			errCheck: domain.IsValidation,
			field:    "refYear",
		},
		{
			name:     "bad request without body",
			status:   http.StatusBadRequest,
			errCheck: domain.IsValidation,
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			errCheck: domain.IsUnavailable,
		},
		{
			name:     "malformed body",
			status:   http.StatusOK,
			body:     `not json`,
			errCheck: domain.IsUnavailable,
		},
		{
			name:     "missing age",
			status:   http.StatusOK,
			body:     `{"result":32}`,
			errCheck: domain.IsUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestAgeClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = fmt.Fprint(w, tt.body)
			})

			_, err := client.Calculate(context.Background(),
				domain.Date{Day: 1, Month: 1, Year: 2000},
				domain.Date{Day: 1, Month: 1, Year: 2020},
			)

			require.Error(t, err)
			assert.True(t, tt.errCheck(err), "unexpected error: %v", err)

			if tt.field != "" {
				var valErr *domain.ValidationError
				require.ErrorAs(t, err, &valErr)
				assert.Equal(t, tt.field, valErr.Field)
			}
		})
	}
}

func TestAgeClient_Calculate_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := clients.New(testConfig(url))
	require.NoError(t, err)

	ac := NewAgeClient(AgeClientConfig{Client: client})

	_, err = ac.Calculate(context.Background(), domain.Date{}, domain.Date{})

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestAgeClient_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client := newTestAgeClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/-/live", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})

		require.NoError(t, client.Check(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		client := newTestAgeClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		err := client.Check(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsUnavailable(err))
	})
}

func TestAgeClient_NameAndOptional(t *testing.T) {
	client := newTestAgeClient(t, func(http.ResponseWriter, *http.Request) {})

	assert.Equal(t, "age-calculator", client.Name())
	assert.True(t, client.Optional())
}
