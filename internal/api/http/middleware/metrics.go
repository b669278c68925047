package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-sitegen-backend/internal/metrics"
)

// Prometheus records HTTP request metrics labelled by route pattern.
func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		path := routePattern(c)
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return "unmatched"
}
