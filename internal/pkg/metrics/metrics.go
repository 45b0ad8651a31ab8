package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geotales",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geotales",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream provider metrics
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total requests issued to external providers",
	}, []string{"provider"})

	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "upstream",
		Name:      "errors_total",
		Help:      "Total failed requests to external providers",
	}, []string{"provider"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geotales",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of external provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	}, []string{"provider"})

	// Pipeline metrics
	LandmarksDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "pipeline",
		Name:      "landmarks_dropped_total",
		Help:      "POIs dropped during enrichment, by reason",
	}, []string{"reason"})

	LandmarksEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "pipeline",
		Name:      "landmarks_emitted_total",
		Help:      "Landmarks included in responses",
	})

	SamplePoints = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geotales",
		Subsystem: "pipeline",
		Name:      "sample_points",
		Help:      "Sample points produced per route",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
	})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geotales",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// ObserveUpstream times one call to an external provider. Use with a named
// error return:
//
//	defer metrics.ObserveUpstream("ors")(&err)
func ObserveUpstream(provider string) func(*error) {
	start := time.Now()
	return func(errp *error) {
		UpstreamRequests.WithLabelValues(provider).Inc()
		UpstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
		if errp != nil && *errp != nil {
			UpstreamErrors.WithLabelValues(provider).Inc()
		}
	}
}
