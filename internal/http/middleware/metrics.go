package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/langbridge-backend/internal/observability"
)

// Metrics feeds request count, latency and the in-flight gauge. A nil registry disables it.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		m.ObserveAPI(c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(start))
	}
}
