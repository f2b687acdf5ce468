// Package metrics defines the Prometheus collectors for age calculations.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fallback reasons.
const (
	FallbackRemoteError = "remote_error"
	FallbackMismatch    = "mismatch"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Calculations *prometheus.CounterVec
	Fallbacks    *prometheus.CounterVec
	BatchSize    prometheus.Histogram
	RateLimited  prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Pass a fresh
// prometheus.NewRegistry() in tests; production uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		Calculations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "age_service_calculations_total",
			Help: "Total number of completed age calculations",
		}, []string{"source", "strict"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "age_service_fallbacks_total",
			Help: "Total number of remote calculations replaced by the local result",
		}, []string{"reason"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "age_service_batch_size",
			Help:    "Number of items per batch request",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11),
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "age_service_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		gatherer: prometheus.DefaultGatherer,
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// ObserveCalculation counts one completed calculation.
func (m *Metrics) ObserveCalculation(source string, strict bool) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(source, strconv.FormatBool(strict)).Inc()
}

// IncrementFallback counts a remote result that was discarded.
func (m *Metrics) IncrementFallback(reason string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(reason).Inc()
}

// ObserveBatchSize records the size of a batch request.
func (m *Metrics) ObserveBatchSize(n int) {
	if m == nil {
		return
	}
	m.BatchSize.Observe(float64(n))
}

// IncrementRateLimited counts a rejected request.
func (m *Metrics) IncrementRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// Handler serves the registry the collectors were registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
