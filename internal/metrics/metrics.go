package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foodhub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of orders placed.",
		},
	)

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Order status changes by target status.",
		},
		[]string{"status"},
	)

	reviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Subsystem: "reviews",
			Name:      "created_total",
			Help:      "Total number of reviews posted.",
		},
	)

	ratingRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodhub",
			Subsystem: "reviews",
			Name:      "rating_recomputes_total",
			Help:      "Meal rating recomputations by outcome.",
		},
		[]string{"success"},
	)

	ratingQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foodhub",
			Subsystem: "reviews",
			Name:      "rating_queue_depth",
			Help:      "Meal rating recomputations waiting to run.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersCreated,
		orderTransitions,
		reviewsCreated,
		ratingRecomputes,
		ratingQueueDepth,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry for scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records HTTP metrics for each request using the matched route pattern
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordOrderCreated() {
	ordersCreated.Inc()
}

func RecordOrderTransition(status string) {
	orderTransitions.WithLabelValues(status).Inc()
}

func RecordReviewCreated() {
	reviewsCreated.Inc()
}

// RecordRatingRecompute counts a finished meal rating recomputation
func RecordRatingRecompute(success bool) {
	ratingRecomputes.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func SetRatingQueueDepth(depth int) {
	ratingQueueDepth.Set(float64(depth))
}
