package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records request counts and latencies for one service.
type HTTPMetrics struct {
	ServiceName string

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	uploads  *prometheus.CounterVec
	registry *prometheus.Registry
}

// NewHTTPMetrics creates the collectors and registers them on a dedicated registry
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{
		ServiceName: serviceName,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_image_uploads_total",
				Help: "Uploaded product and logo images by outcome",
			},
			[]string{"service", "outcome"},
		),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.uploads,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records request metrics after the handler chain ran
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.requests.WithLabelValues(m.ServiceName, c.Request.Method, path, status).Inc()
		m.duration.WithLabelValues(m.ServiceName, c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpload counts one blob upload attempt.
func (m *HTTPMetrics) ObserveUpload(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.uploads.WithLabelValues(m.ServiceName, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
