package logging

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// RequestLogger logs one entry per request. 5xx responses log at Error, 4xx
// at Warn. Paths in skip are not logged.
func RequestLogger(logger Logger, skip ...string) gin.HandlerFunc {
	skipSet := make(map[string]bool, len(skip))
	for _, p := range skip {
		skipSet[p] = true
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipSet[path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []Field{
			String("method", c.Request.Method),
			String("path", path),
			Int("status", status),
			Duration("latency", time.Since(start)),
			Int("bytes", c.Writer.Size()),
			String("client_ip", c.ClientIP()),
			String("request_id", c.GetString(RequestIDKey)),
		}

		switch {
		case status >= 500:
			logger.Error("request completed with server error", fields...)
		case status >= 400:
			logger.Warn("request completed with client error", fields...)
		default:
			logger.Info("request completed", fields...)
		}
	}
}
