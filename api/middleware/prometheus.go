package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status", "service"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "service"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_mutations_total",
			Help: "Total number of post/comment/follow/like mutations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	pageCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_page_cache_requests_total",
			Help: "Requests served through the page cache",
		},
		[]string{"result"},
	)
)

func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			status,
			serviceName,
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			serviceName,
		).Observe(duration)
	}
}

// RecordMutation считает мутации: applied, unchanged, forbidden, invalid, error
func RecordMutation(operation, outcome string) {
	mutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObservePageCache считает попадания и промахи кэша страниц
func ObservePageCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	pageCacheRequests.WithLabelValues(result).Inc()
}
