package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP surface
// and the reconciliation engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	cacheLatency  prometheus.Observer
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheHitRatio prometheus.Gauge

	reconciliationRuns     *prometheus.CounterVec
	reconciliationDuration prometheus.Observer
	providerFallbacks      prometheus.Counter
	sideEffectFailures     *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	reconciliationRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_runs_total",
		Help: "Reconciliation runs by buyer-facing outcome",
	}, []string{"outcome"})

	reconciliationDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reconciliation_duration_seconds",
		Help:    "Duration of reconciliation runs",
		Buckets: prometheus.DefBuckets,
	})

	providerFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reconciliation_provider_fallback_total",
		Help: "Provider status lookups that fell back to APPROVED",
	})

	sideEffectFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_side_effect_failures_total",
		Help: "Swallowed side-effect failures by effect",
	}, []string{"effect"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses, cacheHitRatio,
		reconciliationRuns, reconciliationDuration, providerFallbacks, sideEffectFailures, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:               registry,
		handler:                handler,
		requestDuration:        requestDuration,
		requestTotal:           requestTotal,
		cacheLatency:           cacheLatency,
		cacheHits:              cacheHits,
		cacheMisses:            cacheMisses,
		cacheHitRatio:          cacheHitRatio,
		reconciliationRuns:     reconciliationRuns,
		reconciliationDuration: reconciliationDuration,
		providerFallbacks:      providerFallbacks,
		sideEffectFailures:     sideEffectFailures,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	if s == nil {
		return promhttp.Handler()
	}
	return s.handler
}

// ObserveHTTPRequest records one served HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if s == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// RecordCacheOperation records a cache lookup and refreshes the hit ratio.
func (s *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if s == nil {
		return
	}
	s.cacheLatency.Observe(duration.Seconds())
	if hit {
		s.cacheHits.Inc()
		atomic.AddUint64(&s.cacheHitCount, 1)
	} else {
		s.cacheMisses.Inc()
		atomic.AddUint64(&s.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&s.cacheHitCount)
	total := hits + atomic.LoadUint64(&s.cacheMissCount)
	if total > 0 {
		s.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// RecordReconciliation records one completed run with its outcome.
func (s *MetricsService) RecordReconciliation(outcome string, duration time.Duration) {
	if s == nil {
		return
	}
	s.reconciliationRuns.WithLabelValues(outcome).Inc()
	s.reconciliationDuration.Observe(duration.Seconds())
}

// RecordProviderFallback counts an optimistic APPROVED substitution.
func (s *MetricsService) RecordProviderFallback() {
	if s == nil {
		return
	}
	s.providerFallbacks.Inc()
}

// RecordSideEffectFailure counts a swallowed executor failure.
func (s *MetricsService) RecordSideEffectFailure(effect string) {
	if s == nil {
		return
	}
	s.sideEffectFailures.WithLabelValues(effect).Inc()
}
