// Package metrics exposes Prometheus collectors for the championship service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithRegistry replaces the private registry, e.g. with prometheus.NewRegistry() in tests.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	scheduleGenerations *prometheus.CounterVec
	scheduleFixtures    prometheus.Histogram
	matchResults        *prometheus.CounterVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "championship",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})

	m.scheduleGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "schedule",
		Name:      "generations_total",
		Help:      "Schedule previews and confirmations by outcome.",
	}, []string{"step", "result"})

	m.scheduleFixtures = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "schedule",
		Name:      "fixtures",
		Help:      "Number of fixtures written per confirmed schedule.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	m.matchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matches",
		Name:      "results_total",
		Help:      "Match status changes recorded by organizers.",
	}, []string{"status"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpRequestDuration,
		m.scheduleGenerations,
		m.scheduleFixtures,
		m.matchResults,
	)
	return m
}

func (m *Manager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordSchedule counts a preview or confirm step; fixtures is observed only
// for successful confirmations.
func (m *Manager) RecordSchedule(step string, err error, fixtures int) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.scheduleGenerations.WithLabelValues(step, result).Inc()
	if err == nil && step == "confirm" {
		m.scheduleFixtures.Observe(float64(fixtures))
	}
}

func (m *Manager) RecordMatchResult(status string) {
	m.matchResults.WithLabelValues(status).Inc()
}

func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}
