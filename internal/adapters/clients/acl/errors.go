package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/domain"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrorResponse is a remote error body. Both the nested envelope
// ({"error":{"code","message"}}) and a flat {"code","message"} are accepted.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail contains error information from a remote service.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// GetCode returns the error code from either format.
func (e *ErrorResponse) GetCode() string {
	if e.Error.Code != "" {
		return e.Error.Code
	}

	return e.Code
}

// GetMessage returns the error message from either format.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse parses an error body. It returns nil when the body is
// empty, not JSON or carries neither a code nor a message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetCode() == "" && errResp.GetMessage() == "" {
		return nil
	}

	return &errResp
}

// MapHTTPError maps a failed exchange to a domain error. resp may be nil
// when clientErr is set; a 2xx response maps to nil.
func MapHTTPError(resp *http.Response, clientErr error, serviceName, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, serviceName, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(serviceName, "no response received")
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	var errResp *ErrorResponse
	if resp.Body != nil {
		errResp = ParseErrorResponse(resp.Body)
	}

	return mapStatusCode(resp.StatusCode, errResp, serviceName, operation)
}

func mapClientError(err error, serviceName, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(serviceName, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(serviceName, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(serviceName, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

func mapStatusCode(status int, errResp *ErrorResponse, serviceName, operation string) error {
	message := defaultMessageForStatus(status, operation)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if errResp != nil && len(errResp.Error.Details) > 0 {
			// Lowest field name first so the mapping is deterministic.
			fields := make([]string, 0, len(errResp.Error.Details))
			for field := range errResp.Error.Details {
				fields = append(fields, field)
			}
			slices.Sort(fields)

			return domain.NewValidationError(fields[0], errResp.Error.Details[fields[0]])
		}

		return domain.NewValidationError("", message)
	default:
		return domain.NewUnavailableError(serviceName, message)
	}
}

func defaultMessageForStatus(status int, operation string) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return "invalid request"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusNotFound:
		return "endpoint not found"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}
