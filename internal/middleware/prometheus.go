package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courtsec/courtsec/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, so probes for
// arbitrary paths share one series.
const unmatchedRoute = "unmatched"

// PrometheusMiddleware records request duration and count by method, route
// pattern and status.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}
		metrics.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(labels...).Inc()
	}
}
