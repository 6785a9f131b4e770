package translator

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medtranslate_requests_total",
			Help: "Total number of translation requests by service and status",
		},
		[]string{"service", "status"},
	)

	requestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medtranslate_request_duration_seconds",
			Help:    "Duration of translation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	cacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medtranslate_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	cacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medtranslate_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	batchSizeHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medtranslate_batch_size",
			Help:    "Number of unique requests per dispatched batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)

	fallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medtranslate_fallbacks_total",
			Help: "Total number of switches to the secondary provider",
		},
	)

	providerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medtranslate_provider_errors_total",
			Help: "Total number of provider failures by provider and reason",
		},
		[]string{"provider", "reason"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "medtranslate_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	retryAttemptsHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medtranslate_retry_attempts",
			Help:    "Number of attempts per logical primary provider call",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	termsExtractedHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "medtranslate_terms_extracted",
			Help:    "Number of protected terms extracted per request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	limiterInWindow = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medtranslate_rate_limiter_in_window",
			Help: "Admitted requests currently inside the rate limiter window",
		},
	)

	limiterBackoffSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "medtranslate_rate_limiter_backoff_seconds",
			Help: "Current adaptive backoff in seconds",
		},
	)
)

// MetricsRecorder provides methods to record metrics; recording is a no-op
// unless metrics are enabled in the config.
type MetricsRecorder struct {
	enabled bool
}

// NewMetricsRecorder creates a metrics recorder.
func NewMetricsRecorder(enabled bool) *MetricsRecorder {
	return &MetricsRecorder{enabled: enabled}
}

// RecordRequest records a completed translation request.
func (m *MetricsRecorder) RecordRequest(service Service, status string) {
	if !m.enabled {
		return
	}
	requestsTotal.WithLabelValues(string(service), status).Inc()
}

// RecordRequestDuration records a request duration in seconds.
func (m *MetricsRecorder) RecordRequestDuration(seconds float64) {
	if !m.enabled {
		return
	}
	requestDuration.Observe(seconds)
}

// RecordCacheHit records a result cache hit.
func (m *MetricsRecorder) RecordCacheHit() {
	if !m.enabled {
		return
	}
	cacheHitsTotal.Inc()
}

// RecordCacheMiss records a result cache miss.
func (m *MetricsRecorder) RecordCacheMiss() {
	if !m.enabled {
		return
	}
	cacheMissesTotal.Inc()
}

// RecordBatchSize records the unique-request size of a dispatched batch.
func (m *MetricsRecorder) RecordBatchSize(size int) {
	if !m.enabled {
		return
	}
	batchSizeHist.Observe(float64(size))
}

// RecordFallback records a switch to the secondary provider.
func (m *MetricsRecorder) RecordFallback() {
	if !m.enabled {
		return
	}
	fallbacksTotal.Inc()
}

// RecordProviderError records a provider failure.
func (m *MetricsRecorder) RecordProviderError(provider Service, reason FailureReason) {
	if !m.enabled {
		return
	}
	providerErrorsTotal.WithLabelValues(string(provider), string(reason)).Inc()
}

// RecordBreakerState records a breaker's current state.
func (m *MetricsRecorder) RecordBreakerState(name string, state gobreaker.State) {
	if !m.enabled {
		return
	}
	var v float64
	switch state {
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	breakerState.WithLabelValues(name).Set(v)
}

// RecordRetryAttempts records the attempt count of a logical primary call.
func (m *MetricsRecorder) RecordRetryAttempts(attempts int) {
	if !m.enabled {
		return
	}
	retryAttemptsHist.Observe(float64(attempts))
}

// RecordTermsExtracted records how many terms a request yielded.
func (m *MetricsRecorder) RecordTermsExtracted(count int) {
	if !m.enabled {
		return
	}
	termsExtractedHist.Observe(float64(count))
}

// RecordLimiter updates the rate limiter gauges.
func (m *MetricsRecorder) RecordLimiter(snapshot RateLimiterMetrics) {
	if !m.enabled {
		return
	}
	limiterInWindow.Set(float64(snapshot.InWindow))
	limiterBackoffSeconds.Set(snapshot.Backoff.Seconds())
}

// GetMetricsHandler returns an HTTP handler exposing Prometheus metrics.
func GetMetricsHandler() http.Handler {
	return promhttp.Handler()
}
