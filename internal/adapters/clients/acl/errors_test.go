package acl

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/domain"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMapHTTPError_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		errCheck func(error) bool
		contains string
	}{
		{name: "bad request", status: http.StatusBadRequest, errCheck: domain.IsValidation, contains: "invalid request"},
		{name: "unprocessable", status: http.StatusUnprocessableEntity, errCheck: domain.IsValidation},
		{name: "unauthorized", status: http.StatusUnauthorized, errCheck: domain.IsUnavailable, contains: "access denied"},
		{name: "not found", status: http.StatusNotFound, errCheck: domain.IsUnavailable, contains: "endpoint not found"},
		{name: "rate limited", status: http.StatusTooManyRequests, errCheck: domain.IsUnavailable, contains: "rate limit"},
		{name: "server error", status: http.StatusInternalServerError, errCheck: domain.IsUnavailable, contains: "status 500"},
		{name: "bad gateway", status: http.StatusBadGateway, errCheck: domain.IsUnavailable},
		{
			name:     "message from body",
			status:   http.StatusServiceUnavailable,
			body:     `{"error":{"code":"UNAVAILABLE","message":"draining"}}`,
			errCheck: domain.IsUnavailable,
			contains: "draining",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(response(tt.status, tt.body), nil, "age-calculator", "calculate age")

			require.Error(t, err)
			assert.True(t, tt.errCheck(err), "unexpected error: %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestMapHTTPError_ValidationDetailsPickLowestField(t *testing.T) {
	body := `{"error":{"code":"VALIDATION_ERROR","message":"bad","details":{"refYear":"is required","birthDay":"is required"}}}`

	err := MapHTTPError(response(http.StatusBadRequest, body), nil, "age-calculator", "calculate age")

	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "birthDay", valErr.Field)
	assert.Equal(t, "is required", valErr.Message)
}

func TestMapHTTPError_ClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "circuit open", err: clients.ErrCircuitOpen, contains: "circuit breaker open"},
		{name: "retries exhausted", err: fmt.Errorf("%w: boom", clients.ErrMaxRetriesExceeded), contains: "max retries exceeded"},
		{name: "other", err: errors.New("dial tcp: refused"), contains: "dial tcp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(nil, tt.err, "age-calculator", "calculate age")

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestMapHTTPError_SuccessReturnsNil(t *testing.T) {
	assert.NoError(t, MapHTTPError(response(http.StatusOK, ""), nil, "svc", "op"))
}

func TestMapHTTPError_NilResponse(t *testing.T) {
	err := MapHTTPError(nil, nil, "svc", "op")

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestParseErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		body        io.Reader
		wantNil     bool
		wantCode    string
		wantMessage string
	}{
		{name: "nested", body: strings.NewReader(`{"error":{"code":"X","message":"nested"}}`), wantCode: "X", wantMessage: "nested"},
		{name: "flat", body: strings.NewReader(`{"code":"Y","message":"flat"}`), wantCode: "Y", wantMessage: "flat"},
		{name: "invalid json", body: strings.NewReader(`{`), wantNil: true},
		{name: "empty object", body: strings.NewReader(`{}`), wantNil: true},
		{name: "nil body", body: nil, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseErrorResponse(tt.body)

			if tt.wantNil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.GetCode())
			assert.Equal(t, tt.wantMessage, got.GetMessage())
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		got, err := DecodeResponse[ageResponse](io.NopCloser(strings.NewReader(`{"age":7}`)))

		require.NoError(t, err)
		require.NotNil(t, got.Age)
		assert.Equal(t, 7, *got.Age)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodeResponse[ageResponse](io.NopCloser(strings.NewReader(`{`)))
		assert.ErrorContains(t, err, "decoding response")
	})

	t.Run("nil body", func(t *testing.T) {
		_, err := DecodeResponse[ageResponse](nil)
		assert.Error(t, err)
	})
}

func TestBaseAdapter_ServiceName(t *testing.T) {
	client, err := clients.New(testConfig("http://peer"))
	require.NoError(t, err)

	adapter := NewBaseAdapter(client, "age-calculator")

	assert.Equal(t, "age-calculator", adapter.ServiceName())
	assert.Same(t, client, adapter.Client())
}
