// Package metrics constructs the metrics the application will track.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the set of metrics we gather. These fields are safe to
// be accessed concurrently thanks to the prometheus collectors.
type Metrics struct {
	registry   *prometheus.Registry
	requests   *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	panics     prometheus.Counter
	operations *prometheus.CounterVec
}

// New constructs the metrics under the specified namespace with its own
// registry, so nothing leaks in from the default registry.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"route", "method", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total HTTP requests that failed.",
		}, []string{"route"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panics_total",
			Help:      "Total panics recovered while handling requests.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Escrow operations by name and outcome.",
		}, []string{"operation", "outcome"}),
	}

	registry.MustRegister(
		m.requests,
		m.durations,
		m.errors,
		m.panics,
		m.operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &m
}

// Handler returns the handler that serves the gathered metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Request records a handled request.
func (m *Metrics) Request(route string, method string, status int, took time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(route, method).Observe(took.Seconds())
}

// Error records a failed request.
func (m *Metrics) Error(route string) {
	m.errors.WithLabelValues(route).Inc()
}

// Panic records a recovered panic.
func (m *Metrics) Panic() {
	m.panics.Inc()
}

// Operation records the outcome of an escrow operation such as "create" with
// "ok" or the failure kind.
func (m *Metrics) Operation(operation string, outcome string) {
	m.operations.WithLabelValues(operation, outcome).Inc()
}
