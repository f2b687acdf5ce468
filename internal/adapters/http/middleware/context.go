package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const (
	ctxKeyRequestID     contextKey = "request_id"
	ctxKeyCorrelationID contextKey = "correlation_id"
)

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, ctxKeyRequestID)
}

// CorrelationIDFromContext returns the correlation ID carried by ctx, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return idFromContext(ctx, ctxKeyCorrelationID)
}

// ContextWithRequestID stores a request ID in the context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// ContextWithCorrelationID stores a correlation ID in the context.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// PropagateIDs copies the request and correlation IDs held by ctx onto an
// outbound header set so the remote calculator logs under the same IDs.
func PropagateIDs(ctx context.Context, h http.Header) {
	if id := RequestIDFromContext(ctx); id != "" {
		h.Set(HeaderRequestID, id)
	}

	if id := CorrelationIDFromContext(ctx); id != "" {
		h.Set(HeaderCorrelationID, id)
	}
}

func idFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
