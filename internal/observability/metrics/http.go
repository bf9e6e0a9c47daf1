// Package metrics exposes low-cardinality prometheus metrics for the HTTP server.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics captures request counts, durations, and in-flight gauge.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

// NewHTTPMetrics creates and registers the HTTP server collectors.
func NewHTTPMetrics() (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "netbill",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route, method, and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "netbill",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "netbill",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.inFlight} {
		if err := prometheus.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				_ = are
				continue
			}
			return nil, err
		}
	}

	return m, nil
}

// GinMiddleware records request metrics per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		route := normalizeRoute(c.FullPath())
		m.inFlight.Inc()
		start := time.Now()
		c.Next()
		m.inFlight.Dec()

		status := strconv.Itoa(c.Writer.Status())
		m.requestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		m.requestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return "unknown"
	}
	return route
}
