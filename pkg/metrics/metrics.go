// Package metrics provides Prometheus collectors for validation, upstream
// fetches, caching and the HTTP API.
//
// Usage:
//
//	metrics.RecordEvaluation("GREEN", 2*time.Millisecond)
//	metrics.RecordUpstreamCall("aliexpress", "ok", 180*time.Millisecond)
//	metrics.RecordCacheHit()
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EvaluationsTotal counts finished evaluations by status
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropscout_evaluations_total",
			Help: "Total number of product evaluations by status",
		},
		[]string{"status"},
	)

	// EvaluationDuration tracks scoring latency (normalized signals to result)
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dropscout_evaluation_duration_seconds",
			Help:    "Duration of a single product evaluation in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	// BatchSize tracks the size of accepted batches
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dropscout_batch_size",
			Help:    "Number of products per accepted batch",
			Buckets: []float64{1, 5, 10, 20, 30, 40, 50},
		},
	)

	// BatchRejectedTotal counts batches rejected before any work
	BatchRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropscout_batch_rejected_total",
			Help: "Total number of batches rejected for exceeding the size limit",
		},
	)

	// UpstreamCallsTotal counts upstream fetches by source and outcome
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropscout_upstream_calls_total",
			Help: "Total number of upstream signal fetches",
		},
		[]string{"source", "outcome"},
	)

	// UpstreamDuration tracks upstream fetch latency
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropscout_upstream_duration_seconds",
			Help:    "Duration of upstream signal fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// BreakerState reports circuit breaker state per source (0 closed, 1 half-open, 2 open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dropscout_circuit_breaker_state",
			Help: "Circuit breaker state per upstream source",
		},
		[]string{"source"},
	)

	// CacheHitsTotal counts validation cache hits
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropscout_cache_hits_total",
			Help: "Total number of validation cache hits",
		},
	)

	// CacheMissesTotal counts validation cache misses
	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dropscout_cache_misses_total",
			Help: "Total number of validation cache misses",
		},
	)

	// HTTPRequestsTotal counts API requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropscout_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "code"},
	)

	// HTTPRequestDuration tracks API latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dropscout_http_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WebsocketClients is the number of connected live-feed clients
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dropscout_websocket_clients",
			Help: "Number of connected validation feed clients",
		},
	)

	// JobRunsTotal counts scheduler job runs by job and outcome
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropscout_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "outcome"},
	)
)

// RecordEvaluation records one finished evaluation
func RecordEvaluation(status string, d time.Duration) {
	EvaluationsTotal.WithLabelValues(status).Inc()
	EvaluationDuration.Observe(d.Seconds())
}

// RecordBatch records an accepted batch
func RecordBatch(size int) {
	BatchSize.Observe(float64(size))
}

// RecordBatchRejected records a batch refused for size
func RecordBatchRejected() {
	BatchRejectedTotal.Inc()
}

// RecordUpstreamCall records one upstream fetch
func RecordUpstreamCall(source, outcome string, d time.Duration) {
	UpstreamCallsTotal.WithLabelValues(source, outcome).Inc()
	UpstreamDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetBreakerState records the breaker state for source
func SetBreakerState(source string, state int) {
	BreakerState.WithLabelValues(source).Set(float64(state))
}

// RecordCacheHit records a validation cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a validation cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordHTTPRequest records one API request
func RecordHTTPRequest(method, route string, code int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordJobRun records one scheduler job run
func RecordJobRun(job string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	JobRunsTotal.WithLabelValues(job, outcome).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
