package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"sport-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request. Handlers may set "attempts",
// "schemaVersion" and "failureCategory" on the gin context to enrich it.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if v, ok := c.Get("attempts"); ok {
			fields["attempts"] = v
		}
		if v, ok := c.Get("schemaVersion"); ok {
			fields["schema_version"] = v
		}
		if v, ok := c.Get("failureCategory"); ok {
			fields["failure_category"] = v
		}
		telemetry.Info("request.complete", fields)
	}
}
