package logging

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request logger carried by ctx, or the process
// default.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, nil)
}

// FromContextOr returns the logger stored in ctx, or fallback when ctx
// carries none. A nil fallback means the process default.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	if fallback != nil {
		return fallback
	}

	return defaultLogger
}

// WithContext stores a logger in the context.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithRequestID tags the context logger with request_id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return with(ctx, slog.String("request_id", requestID))
}

// WithTraceID tags the context logger with trace_id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return with(ctx, slog.String("trace_id", traceID))
}

// WithCorrelationID tags the context logger with correlation_id.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return with(ctx, slog.String("correlation_id", correlationID))
}

// WithBatchItem tags the context logger with the position of the item
// being processed inside a batch request.
func WithBatchItem(ctx context.Context, index int) context.Context {
	return with(ctx, slog.Int("batch_index", index))
}

func with(ctx context.Context, attr slog.Attr) context.Context {
	return WithContext(ctx, FromContext(ctx).With(attr))
}

// SetDefault replaces the process default logger, both here and in slog.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
