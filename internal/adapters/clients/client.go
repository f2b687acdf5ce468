package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/age-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/age-service/internal/platform/config"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/age-service/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is the base URL for all requests (e.g., "http://peer:8080").
	BaseURL string

	// ServiceName identifies the downstream service for logging and tracing.
	ServiceName string

	// Timeout is the per-attempt request timeout. Retries and backoff can
	// push total wall-clock time past it.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, if set, decorates every attempt including retries.
	AuthFunc func(*http.Request)

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Client is an instrumented HTTP client for downstream services. It retries
// with exponential backoff and jitter, sits behind a circuit breaker, emits
// OpenTelemetry spans and metrics and forwards request/correlation IDs.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker
	retry       retryPolicy

	tracer          trace.Tracer
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(cfg.Circuit, WithStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	}))

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		cfg:             cfg,
		logger:          logger,
		cb:              cb,
		retry:           newRetryPolicy(cfg.Retry),
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.MaxIdleConns > 0 {
		t.MaxIdleConns = cfg.MaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
	}
	if cfg.IdleConnTimeout > 0 {
		t.IdleConnTimeout = cfg.IdleConnTimeout
	}

	return t
}

// Do executes req with retry, circuit breaking, tracing and logging.
// Only bodiless requests, or ones with GetBody set, are safe to retry.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(startTime), "circuit_open")
		logger.WarnContext(ctx, "request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", stripQuery(req.URL)),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, lastErr := c.executeWithRetry(ctx, req, logger)

	return c.recordResult(ctx, req, resp, lastErr, span, logger, startTime)
}

func (c *Client) executeWithRetry(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	for attempt := range c.retry.cfg.MaxAttempts {
		if attempt > 0 {
			backoff := c.retry.backoff(attempt)
			logger.DebugContext(ctx, "retrying request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
				slog.Any("error", lastErr),
			)

			if err := wait(ctx, backoff); err != nil {
				return nil, err
			}

			if c.cfg.AuthFunc != nil {
				c.cfg.AuthFunc(req)
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		retry, attemptErr := c.retry.classify(resp, err)
		if !retry {
			if attemptErr != nil {
				return nil, attemptErr
			}
			return resp, nil
		}

		lastErr = attemptErr
	}

	return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

func (c *Client) recordResult(
	ctx context.Context,
	req *http.Request,
	resp *http.Response,
	lastErr error,
	span trace.Span,
	logger *slog.Logger,
	startTime time.Time,
) (*http.Response, error) {
	duration := time.Since(startTime)

	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())

		if ctx.Err() != nil {
			c.cb.Release()
			c.recordMetrics(ctx, req.Method, 0, duration, "context_canceled")
			return nil, lastErr
		}

		c.cb.RecordFailure()
		c.recordMetrics(ctx, req.Method, 0, duration, "error")
		logger.ErrorContext(ctx, "request failed",
			slog.Duration("duration", duration),
			slog.Any("error", lastErr),
		)

		return nil, lastErr
	}

	c.cb.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration, statusCategory(resp.StatusCode))

	logger.DebugContext(ctx, "request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// Get performs an HTTP GET request. query may be nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.buildURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// ServiceName returns the downstream service name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	middleware.PropagateIDs(ctx, req.Header)

	if c.cfg.AuthFunc != nil {
		c.cfg.AuthFunc(req)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	c.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	c.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// stripQuery drops query and credentials; queries may carry birth dates.
func stripQuery(u *url.URL) string {
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path}).String()
}

func statusCategory(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
