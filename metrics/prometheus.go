package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks HTTP requests served by the ops server
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// CatalogRequests counts menu fetches by outcome (ok, cached, not_found, error)
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Menu API requests by outcome",
		},
		[]string{"outcome"},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	CartLinesAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_lines_added_total",
			Help: "Order items committed into a cart",
		},
	)

	// ValidationFailures counts confirm attempts rejected for an unmet category minimum
	ValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "draft_validation_failures_total",
			Help: "Confirm attempts with at least one category below its minimum",
		},
	)

	SubItemsCapped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sub_items_capped_total",
			Help: "Add-on clicks ignored because the category maximum was reached",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Chat sessions currently held in memory",
		},
	)
)

// PrometheusMiddleware records request count and latency.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
