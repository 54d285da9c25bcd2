// Package metrics exposes Prometheus metrics for favicon resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raysh454/favicond/internal/model"
)

const (
	// Namespace is the namespace for all metrics.
	Namespace = "favicond"
)

// Metrics holds all Prometheus metrics of the service. It implements
// batch.Recorder and cache.Observer.
type Metrics struct {
	ResolutionsTotal          *prometheus.CounterVec
	ResolutionDurationSeconds *prometheus.HistogramVec

	BatchesTotal         prometheus.Counter
	BatchSize            prometheus.Histogram
	BatchDurationSeconds prometheus.Histogram

	CacheLookupsTotal *prometheus.CounterVec

	HTTPRequestsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates and registers all metrics on reg. A nil reg gets a fresh
// registry with Go and process collectors.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(reg)
	m := &Metrics{gatherer: reg}

	m.initResolutionMetrics(factory)
	m.initBatchMetrics(factory)

	m.CacheLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_lookups_total",
			Help:      "Favicon cache lookups by result",
		},
		[]string{"result"},
	)

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route and status class",
		},
		[]string{"route", "code"},
	)

	return m
}

func (m *Metrics) initResolutionMetrics(factory promauto.Factory) {
	m.ResolutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "resolutions_total",
			Help:      "Total number of site resolutions by outcome",
		},
		[]string{"status"},
	)

	m.ResolutionDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "resolution_duration_seconds",
			Help:      "Duration of a single site resolution in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"status"},
	)
}

func (m *Metrics) initBatchMetrics(factory promauto.Factory) {
	m.BatchesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "batches_total",
			Help:      "Total number of batches resolved",
		},
	)

	m.BatchSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "batch_size",
			Help:      "Number of sites per batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	m.BatchDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a batch in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
	)
}

func (m *Metrics) ObserveResolution(status model.OutcomeStatus, elapsed time.Duration) {
	m.ResolutionsTotal.WithLabelValues(string(status)).Inc()
	m.ResolutionDurationSeconds.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveBatch(size int, elapsed time.Duration) {
	m.BatchesTotal.Inc()
	m.BatchSize.Observe(float64(size))
	m.BatchDurationSeconds.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveHTTP counts a served request. code is the status class such as
// "2xx".
func (m *Metrics) ObserveHTTP(route string, status int) {
	m.HTTPRequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
