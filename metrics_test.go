package p2p

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetricsCollectorWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	if collector == nil {
		t.Fatal("NewMetricsCollectorWithRegistry() returned nil")
	}
	if collector.requestsTotal == nil {
		t.Error("requestsTotal metric not initialized")
	}
	if collector.requestDuration == nil {
		t.Error("requestDuration metric not initialized")
	}
	if collector.requestsInFlight == nil {
		t.Error("requestsInFlight metric not initialized")
	}
	if collector.retriesTotal == nil {
		t.Error("retriesTotal metric not initialized")
	}
	if collector.cacheHits == nil {
		t.Error("cacheHits metric not initialized")
	}
	if collector.cacheMisses == nil {
		t.Error("cacheMisses metric not initialized")
	}
	if collector.errorsTotal == nil {
		t.Error("errorsTotal metric not initialized")
	}
}

func TestMetricsCollectorRecordRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	collector.RecordRequest("GET", "/content_items/x.json", 200, 100*time.Millisecond)
	collector.RecordRequest("GET", "/content_items/x.json", 200, 50*time.Millisecond)
	collector.RecordRequest("GET", "/content_items/x.json", 404, 10*time.Millisecond)

	ok := testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "/content_items/x.json", "200"))
	if ok != 2 {
		t.Errorf("Expected 2 successful requests recorded, got %v", ok)
	}
	notFound := testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "/content_items/x.json", "404"))
	if notFound != 1 {
		t.Errorf("Expected 1 not-found request recorded, got %v", notFound)
	}
}

func TestMetricsCollectorInFlight(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	collector.RecordRequestStart("GET", "/collections/front.json")
	collector.RecordRequestStart("GET", "/collections/front.json")

	gauge := collector.requestsInFlight.WithLabelValues("GET", "/collections/front.json")
	if got := testutil.ToFloat64(gauge); got != 2 {
		t.Errorf("Expected 2 in flight, got %v", got)
	}

	collector.RecordRequestEnd("GET", "/collections/front.json")
	if got := testutil.ToFloat64(gauge); got != 1 {
		t.Errorf("Expected 1 in flight after end, got %v", got)
	}
}

func TestMetricsCollectorCacheCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	collector.RecordCacheHit("GET", "/content_items/x.json")
	collector.RecordCacheHit("GET", "/content_items/x.json")
	collector.RecordCacheMiss("GET", "/content_items/x.json")

	hits := testutil.ToFloat64(collector.cacheHits.WithLabelValues("GET", "/content_items/x.json"))
	if hits != 2 {
		t.Errorf("Expected 2 cache hits, got %v", hits)
	}
	misses := testutil.ToFloat64(collector.cacheMisses.WithLabelValues("GET", "/content_items/x.json"))
	if misses != 1 {
		t.Errorf("Expected 1 cache miss, got %v", misses)
	}
}

func TestMetricsCollectorErrorsByKind(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewMetricsCollectorWithRegistry(registry)

	collector.RecordError(KindForbidden, "GET", "/content_items/x.json")
	collector.RecordError(KindForbidden, "GET", "/content_items/x.json")
	collector.RecordError(KindNotFound, "GET", "/content_items/x.json")

	forbidden := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("Forbidden", "GET", "/content_items/x.json"))
	if forbidden != 2 {
		t.Errorf("Expected 2 forbidden errors, got %v", forbidden)
	}
	notFound := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("NotFound", "GET", "/content_items/x.json"))
	if notFound != 1 {
		t.Errorf("Expected 1 not-found error, got %v", notFound)
	}
}

func TestMetricsCollectorNilReceiver(t *testing.T) {
	var collector *MetricsCollector

	// all record methods must be safe without a collector configured
	collector.RecordRequestStart("GET", "/x.json")
	collector.RecordRequestEnd("GET", "/x.json")
	collector.RecordRequest("GET", "/x.json", 200, time.Millisecond)
	collector.RecordRetry("GET", "/x.json")
	collector.RecordCacheHit("GET", "/x.json")
	collector.RecordCacheMiss("GET", "/x.json")
	collector.RecordError(KindUnknown, "GET", "/x.json")
}
