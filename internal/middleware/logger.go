package middleware

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/coolparks-go/pkg/metrics"
)

// Logger middleware logs HTTP requests and records them in m when m is not nil
func Logger(m *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		log.Printf("[%s] %s %s %d %v %s",
			c.Request.Method,
			path,
			c.ClientIP(),
			status,
			latency,
			c.Errors.String(),
		)

		if m == nil {
			return
		}
		// route template keeps label cardinality bounded
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.RecordAPIRequest(endpoint, c.Request.Method, strconv.Itoa(status))
		m.APIRequestDuration.WithLabelValues(endpoint).Observe(latency.Seconds())
	}
}
