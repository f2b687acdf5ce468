package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

// HeaderTraceID carries the active trace ID back to the caller.
const HeaderTraceID = "X-Trace-ID"

// Metrics holds HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(InstrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

// Middleware returns the otelgin tracing handler followed by the HTTP
// metrics handler. Register both with engine.Use(Middleware(name)...).
func Middleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		metricsMiddleware(),
	}
}

func metricsMiddleware() gin.HandlerFunc {
	m, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if m != nil {
			active := metric.WithAttributes(method, route)
			m.activeRequests.Add(ctx, 1, active)
			defer m.activeRequests.Add(ctx, -1, active)
		}

		// Set before c.Next so the header is sent with any body the handler writes.
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.WithTraceID(ctx, traceID))
		}

		c.Next()

		if m != nil {
			done := metric.WithAttributes(method, route, attribute.Int("http.status_code", c.Writer.Status()))
			m.requestDuration.Record(ctx, time.Since(start).Seconds(), done)
			m.requestTotal.Add(ctx, 1, done)
		}
	}
}
