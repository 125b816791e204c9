package p2p

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector exports Prometheus metrics for the request pipeline.
// All Record methods are safe on a nil receiver, so a client without metrics
// pays only a nil check. Safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec
	retriesTotal     *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
}

// NewMetricsCollector registers collectors on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry registers collectors on the supplied
// registerer, for tests and multi-client processes.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p2p_requests_total",
				Help: "Total number of API requests made",
			},
			[]string{"method", "path", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "p2p_request_duration_seconds",
				Help:    "Duration of API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "p2p_requests_in_flight",
				Help: "Number of API requests currently in flight",
			},
			[]string{"method", "path"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p2p_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "path"},
		),
		cacheHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p2p_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"method", "path"},
		),
		cacheMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p2p_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"method", "path"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "p2p_errors_total",
				Help: "Total number of classified errors by kind",
			},
			[]string{"kind", "method", "path"},
		),
	}
}

// RecordRequestStart marks a request in flight.
func (mc *MetricsCollector) RecordRequestStart(method, path string) {
	if mc == nil {
		return
	}
	mc.requestsInFlight.WithLabelValues(method, path).Inc()
}

// RecordRequestEnd removes a request from the in-flight gauge.
func (mc *MetricsCollector) RecordRequestEnd(method, path string) {
	if mc == nil {
		return
	}
	mc.requestsInFlight.WithLabelValues(method, path).Dec()
}

// RecordRequest records a completed request with its status and duration.
func (mc *MetricsCollector) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}
	mc.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	mc.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRetry counts one retry attempt.
func (mc *MetricsCollector) RecordRetry(method, path string) {
	if mc == nil {
		return
	}
	mc.retriesTotal.WithLabelValues(method, path).Inc()
}

// RecordCacheHit counts a cache hit.
func (mc *MetricsCollector) RecordCacheHit(method, path string) {
	if mc == nil {
		return
	}
	mc.cacheHits.WithLabelValues(method, path).Inc()
}

// RecordCacheMiss counts a cache miss.
func (mc *MetricsCollector) RecordCacheMiss(method, path string) {
	if mc == nil {
		return
	}
	mc.cacheMisses.WithLabelValues(method, path).Inc()
}

// RecordError counts a classified error by kind.
func (mc *MetricsCollector) RecordError(kind Kind, method, path string) {
	if mc == nil {
		return
	}
	mc.errorsTotal.WithLabelValues(kind.String(), method, path).Inc()
}
