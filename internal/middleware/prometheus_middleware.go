package middleware

import (
	"strconv"
	"strings"
	"time"

	"bringalong/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMiddleware records request count and latency per route
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/metrics") {
			c.Next()
			return
		}

		start := time.Now()
		telemetry.HTTPActiveRequests.Inc()
		defer telemetry.HTTPActiveRequests.Dec()

		c.Next()

		// Route templates keep label cardinality bounded
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// PrometheusHandler serves the metrics endpoint
func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
