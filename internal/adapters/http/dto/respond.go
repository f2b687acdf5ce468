package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/age-service/internal/domain"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

const (
	traceIDKey      = "trace_id"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// GetTraceID returns the identifier clients should quote when reporting a
// failed request. The active OpenTelemetry trace wins, then an explicit
// trace_id on the gin context, then the request ID.
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	if v, ok := c.Get(traceIDKey); ok {
		s, _ := v.(string)
		return s
	}

	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return c.GetHeader(requestIDHeader)
}

// MapDomainError maps an error to an HTTP status and error envelope.
// Unknown errors become a 500 with a generic message.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsValidation(err):
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			return http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, domain.ErrValidation.Error())
		}

		// The envelope carries the domain message, not the executor step
		// wrapping around it.
		resp := NewErrorResponse(ErrorCodeValidation, validationErr.Error())
		if validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case errors.Is(err, ErrBinding), errors.Is(err, ErrValidation):
		return http.StatusBadRequest, NewErrorResponseWithDetails(
			ErrorCodeValidation,
			"request validation failed",
			ValidationErrors(err),
		)

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// HandleError writes the envelope for err and logs anything that maps to a 500.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal error",
			"error", err.Error(),
			"trace_id", resp.TraceID,
		)
	}

	c.JSON(status, resp)
}

// AbortWithErrorCode aborts the handler chain with an adapter-level error code.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	resp := NewErrorResponse(code, message).WithTraceID(GetTraceID(c))
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), resp)
}
