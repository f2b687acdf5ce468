package dto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/age-service/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		c.Request.Header.Set("Content-Type", "application/json")
	}

	return c, w
}

func intPtr(v int) *int { return &v }

func TestNewErrorResponse(t *testing.T) {
	got := NewErrorResponse(ErrorCodeValidation, "invalid input")

	assert.Equal(t, &ErrorResponse{
		Error: ErrorDetail{Code: ErrorCodeValidation, Message: "invalid input"},
	}, got)
}

func TestNewErrorResponseWithDetails(t *testing.T) {
	details := map[string]string{"birthDate.day": "this field is required"}

	got := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details)

	assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	assert.Equal(t, details, got.Error.Details)
	assert.Empty(t, got.TraceID)
}

func TestWithTraceID(t *testing.T) {
	resp := NewErrorResponse(ErrorCodeInternal, "boom").WithTraceID("trace-1")

	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeBadRequest, http.StatusBadRequest},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeRateLimited, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusFromCode(tt.code))
		})
	}
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*gin.Context)
		want  string
	}{
		{
			name:  "explicit trace id",
			setup: func(c *gin.Context) { c.Set("trace_id", "ctx-trace") },
			want:  "ctx-trace",
		},
		{
			name:  "falls back to request id",
			setup: func(c *gin.Context) { c.Set("request_id", "req-1") },
			want:  "req-1",
		},
		{
			name:  "falls back to request id header",
			setup: func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "hdr-1") },
			want:  "hdr-1",
		},
		{
			name: "explicit trace id wins over header",
			setup: func(c *gin.Context) {
				c.Set("trace_id", "ctx-trace")
				c.Request.Header.Set("X-Request-ID", "hdr-1")
			},
			want: "ctx-trace",
		},
		{
			name:  "wrong type is ignored",
			setup: func(c *gin.Context) { c.Set("trace_id", 12345) },
			want:  "",
		},
		{
			name:  "nothing set",
			setup: func(*gin.Context) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/", "")
			tt.setup(c)

			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "field validation",
			err:         domain.NewValidationError("birthDate.month", "must be between 1 and 12"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "birthDate.month",
			wantDetails: map[string]string{"birthDate.month": "must be between 1 and 12"},
		},
		{
			name:        "wrapped validation",
			err:         fmt.Errorf("validate: %w", domain.NewValidationError("items", "batch is empty")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "batch is empty",
			wantDetails: map[string]string{"items": "batch is empty"},
		},
		{
			name:        "binding failure",
			err:         fmt.Errorf("%w: %w", ErrBinding, errors.New("bad json")),
			wantStatus:  http.StatusBadRequest,
			wantCode:    ErrorCodeValidation,
			wantMessage: "request validation failed",
			wantDetails: map[string]string{},
		},
		{
			name:        "unavailable",
			err:         domain.NewUnavailableError("age-calculator", "connection refused"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    ErrorCodeUnavailable,
			wantMessage: "unavailable",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("calculate: %w", context.DeadlineExceeded),
			wantStatus:  http.StatusGatewayTimeout,
			wantCode:    ErrorCodeTimeout,
			wantMessage: "timeout",
		},
		{
			name:        "unknown",
			err:         errors.New("disk on fire"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    ErrorCodeInternal,
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, tt.wantMessage)
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, resp.Error.Details)
			}
		})
	}
}

func TestMapDomainError_ValidationMessageDropsStepWrapping(t *testing.T) {
	inner := domain.NewValidationError("birthDate.day", "must be between 1 and 31")

	tests := []struct {
		name string
		err  error
	}{
		{name: "bare", err: inner},
		{name: "step wrapped", err: fmt.Errorf("validate failed: %w", fmt.Errorf("input validation failed: %w", inner))},
		{name: "sentinel only", err: fmt.Errorf("validate failed: %w", domain.ErrValidation)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := MapDomainError(tt.err)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotContains(t, resp.Error.Message, "validate failed")
			assert.NotContains(t, resp.Error.Message, "input validation failed")
		})
	}

	_, resp := MapDomainError(tests[1].err)
	assert.Equal(t, "validation failed for birthDate.day: must be between 1 and 31", resp.Error.Message)
}

func TestMapDomainError_Nil(t *testing.T) {
	status, resp := MapDomainError(nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Nil(t, resp)
}

func TestMapDomainError_HidesInternalMessage(t *testing.T) {
	_, resp := MapDomainError(errors.New("password=hunter2"))

	assert.NotContains(t, resp.Error.Message, "hunter2")
}

func TestHandleError(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	c.Set("trace_id", "trace-789")

	HandleError(c, domain.NewValidationError("refDate.day", "must be between 1 and 30 for 2023-04"))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrorCodeValidation, resp.Error.Code)
	assert.Equal(t, "trace-789", resp.TraceID)
	assert.Contains(t, resp.Error.Details, "refDate.day")
}

func TestAbortWithErrorCode(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")

	AbortWithErrorCode(c, ErrorCodeRateLimited, "slow down")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), ErrorCodeRateLimited)
}

func TestValidator(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}

func TestBindAndValidate_CalculateAgeRequest(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantErr     error
		wantDetails []string
	}{
		{
			name: "valid request",
			body: `{"birthDate":{"day":15,"month":6,"year":1990},"referenceDate":{"day":15,"month":6,"year":2023}}`,
		},
		{
			name: "out of range values are not rejected",
			body: `{"birthDate":{"day":40,"month":13,"year":-5},"referenceDate":{"day":0,"month":0,"year":0}}`,
		},
		{
			name:        "missing birth date",
			body:        `{"referenceDate":{"day":15,"month":6,"year":2023}}`,
			wantErr:     ErrValidation,
			wantDetails: []string{"birthDate"},
		},
		{
			name:        "missing day",
			body:        `{"birthDate":{"month":6,"year":1990},"referenceDate":{"day":15,"month":6,"year":2023}}`,
			wantErr:     ErrValidation,
			wantDetails: []string{"birthDate.day"},
		},
		{
			name:        "non integer year",
			body:        `{"birthDate":{"day":1,"month":6,"year":"1990"},"referenceDate":{"day":15,"month":6,"year":2023}}`,
			wantErr:     ErrBinding,
			wantDetails: []string{"birthDate.year"},
		},
		{
			name:    "malformed json",
			body:    `{invalid}`,
			wantErr: ErrBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodPost, "/", tt.body)

			var req CalculateAgeRequest
			err := BindAndValidate(c, &req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			details := ValidationErrors(err)
			for _, field := range tt.wantDetails {
				assert.Contains(t, details, field)
			}
		})
	}
}

func TestBindAndValidate_ZeroIsPresent(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "/",
		`{"birthDate":{"day":0,"month":0,"year":0},"referenceDate":{"day":0,"month":0,"year":0}}`)

	var req CalculateAgeRequest
	require.NoError(t, BindAndValidate(c, &req))

	assert.Equal(t, domain.Date{}, req.BirthDate.ToDomain())
}

func TestBindAndValidate_BatchRequest(t *testing.T) {
	t.Run("empty items", func(t *testing.T) {
		c, _ := newTestContext(http.MethodPost, "/", `{"items":[]}`)

		var req BatchAgeRequest
		err := BindAndValidate(c, &req)

		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "must be at least 1 items", ValidationErrors(err)["items"])
	})

	t.Run("invalid nested item", func(t *testing.T) {
		c, _ := newTestContext(http.MethodPost, "/",
			`{"items":[{"birthDate":{"day":1,"month":1,"year":2000},"referenceDate":{"day":1,"month":1,"year":2001}},{"birthDate":{"day":1,"month":1,"year":2000}}]}`)

		var req BatchAgeRequest
		err := BindAndValidate(c, &req)

		require.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, ValidationErrors(err), "items[1].referenceDate")
	})
}

func TestBindQueryAndValidate_AgeQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr error
	}{
		{
			name:  "complete query",
			query: "?birthDay=15&birthMonth=6&birthYear=1990&refDay=14&refMonth=6&refYear=2023",
		},
		{
			name:  "strict flag",
			query: "?birthDay=15&birthMonth=6&birthYear=1990&refDay=14&refMonth=6&refYear=2023&strict=true",
		},
		{
			name:    "missing refYear",
			query:   "?birthDay=15&birthMonth=6&birthYear=1990&refDay=14&refMonth=6",
			wantErr: ErrValidation,
		},
		{
			name:    "non integer",
			query:   "?birthDay=abc&birthMonth=6&birthYear=1990&refDay=14&refMonth=6&refYear=2023",
			wantErr: ErrBinding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/api/v1/age"+tt.query, "")

			var q AgeQuery
			err := BindQueryAndValidate(c, &q)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.Date{Day: 15, Month: 6, Year: 1990}, q.Birth())
			assert.Equal(t, domain.Date{Day: 14, Month: 6, Year: 2023}, q.Reference())
		})
	}
}

func TestIsValidationError(t *testing.T) {
	err := Validate(&DateRequest{Day: intPtr(1)})

	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("plain")))
}

func TestNewAgeResponse(t *testing.T) {
	calc := &domain.Calculation{
		Birth:     domain.Date{Day: 15, Month: 6, Year: 1990},
		Reference: domain.Date{Day: 14, Month: 6, Year: 2023},
		Age:       32,
		Source:    domain.SourceLocal,
		Strict:    true,
	}

	got := NewAgeResponse(calc)

	assert.Equal(t, &AgeResponse{
		Age:           32,
		BirthDate:     DateResponse{Day: 15, Month: 6, Year: 1990},
		ReferenceDate: DateResponse{Day: 14, Month: 6, Year: 2023},
		Source:        domain.SourceLocal,
		Strict:        true,
	}, got)
}

func TestNewBatchAgeResult(t *testing.T) {
	t.Run("success keeps zero age", func(t *testing.T) {
		got := NewBatchAgeResult(2, &domain.Calculation{Age: 0, Source: domain.SourceLocal}, nil)

		require.NotNil(t, got.Age)
		assert.Equal(t, 0, *got.Age)
		assert.Equal(t, 2, got.Index)
		assert.Nil(t, got.Error)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, `{"index":2,"age":0,"source":"local"}`, string(raw))
	})

	t.Run("failure", func(t *testing.T) {
		got := NewBatchAgeResult(1, nil, domain.NewValidationError("birthDate.day", "must be between 1 and 28 for 2023-02"))

		assert.Nil(t, got.Age)
		require.NotNil(t, got.Error)
		assert.Equal(t, ErrorCodeValidation, got.Error.Code)
	})
}

func TestMinMaxMessage(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		kind reflect.Kind
		want string
	}{
		{"min string", "min", reflect.String, "must be at least 3 characters"},
		{"max slice", "max", reflect.Slice, "must be at most 3 items"},
		{"min int", "min", reflect.Int, "must be at least 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, minMaxMessage(tt.tag, "3", tt.kind))
		})
	}
}
