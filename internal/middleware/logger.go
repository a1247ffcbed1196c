package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger returns a gin middleware that logs each HTTP request using the provided
// slog.Logger. It records the method, path, list query, status code, response
// size, latency and client IP.
//
// The log level is chosen based on the response status code:
//   - 2xx/3xx: Info
//   - 4xx: Warn
//   - 5xx: Error
//
// It uses slog's Context-aware methods (InfoContext, WarnContext, ErrorContext)
// so that the ContextHandler automatically attaches request_id and client_id
// from context.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}

		ctx := c.Request.Context()
		msg := "request"

		switch {
		case status >= 500:
			logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
		case status >= 400:
			logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
		default:
			logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
		}
	}
}
