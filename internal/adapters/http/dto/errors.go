// Package dto holds the HTTP request and response shapes of the age API,
// the shared error envelope and the helpers that bind, validate and map
// errors onto it.
package dto

import "net/http"

// ErrorResponse is the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g. "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details maps request fields to what was wrong with them.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeValidation   = "VALIDATION_ERROR"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeRateLimited  = "RATE_LIMITED"
	ErrorCodeUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeInternal     = "INTERNAL_ERROR"
	ErrorCodeTimeout      = "TIMEOUT"
	ErrorCodeBadRequest   = "BAD_REQUEST"
)

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	resp := NewErrorResponse(code, message)
	resp.Error.Details = details

	return resp
}

// WithTraceID sets the trace ID and returns the response for chaining.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
