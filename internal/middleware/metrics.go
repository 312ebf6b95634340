package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-leave-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so scanners cannot grow label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route pattern. Paths listed in skip (probes,
// the scrape endpoint) are not observed.
func Metrics(metrics *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
