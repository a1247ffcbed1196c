package middleware

import (
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/simp-lee/logger"
)

const (
	requestIDHeader     = "X-Request-ID"
	requestIDContextKey = "request_id"
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls request-id reuse behavior.
type RequestIDConfig struct {
	// TrustUpstream reuses a well-formed incoming X-Request-ID, such as the
	// one the casedesk client sends with every call.
	TrustUpstream bool
}

// RequestID returns a gin middleware that assigns a unique request ID to each request.
//
// By default, upstream X-Request-ID values are not trusted and a new ID is generated
// for every request.
//
// The request ID is:
//   - Stored in gin.Context under the key "request_id"
//   - Set as the X-Request-ID response header
//   - Stored in the Go context via logger.WithContextAttrs for structured logging
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig returns a gin middleware that assigns request IDs based on config.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ""
		if cfg.TrustUpstream {
			upstreamID := c.GetHeader(requestIDHeader)
			if requestIDPattern.MatchString(upstreamID) {
				id = upstreamID
			}
		}

		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(requestIDHeader, id)

		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("request_id", id))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetRequestID extracts the request ID from the gin.Context.
// Returns an empty string if no request ID is set.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
