package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Business metrics
	SubmissionsTotal  *prometheus.CounterVec
	ModerationActions *prometheus.CounterVec
	WebhookDeliveries *prometheus.CounterVec
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_cache_hits_total",
				Help: "Total number of approved-review cache hits",
			},
			[]string{"language"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_cache_misses_total",
				Help: "Total number of approved-review cache misses",
			},
			[]string{"language"},
		),

		RateLimitHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "submission_rate_limit_hits_total",
				Help: "Total number of throttled review submissions",
			},
		),

		SubmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_submissions_total",
				Help: "Total number of review submissions by outcome",
			},
			[]string{"language", "outcome"},
		),
		ModerationActions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moderation_actions_total",
				Help: "Total number of moderation actions",
			},
			[]string{"action"},
		),
		WebhookDeliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notify_webhook_deliveries_total",
				Help: "Total number of notification webhook deliveries",
			},
			[]string{"status"},
		),
	}

	return metrics
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Init()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordCacheHit records an approved-review cache hit
func RecordCacheHit(language string) {
	if metrics == nil {
		return
	}
	metrics.CacheHits.WithLabelValues(language).Inc()
}

// RecordCacheMiss records an approved-review cache miss
func RecordCacheMiss(language string) {
	if metrics == nil {
		return
	}
	metrics.CacheMisses.WithLabelValues(language).Inc()
}

// RecordRateLimitHit records a throttled submission
func RecordRateLimitHit() {
	if metrics == nil {
		return
	}
	metrics.RateLimitHits.Inc()
}

// RecordSubmission records a review submission outcome
func RecordSubmission(language, outcome string) {
	if metrics == nil {
		return
	}
	metrics.SubmissionsTotal.WithLabelValues(language, outcome).Inc()
}

// RecordModerationAction records a moderation action
func RecordModerationAction(action string) {
	if metrics == nil {
		return
	}
	metrics.ModerationActions.WithLabelValues(action).Inc()
}

// RecordWebhookDelivery records a notification webhook delivery outcome
func RecordWebhookDelivery(status string) {
	if metrics == nil {
		return
	}
	metrics.WebhookDeliveries.WithLabelValues(status).Inc()
}
