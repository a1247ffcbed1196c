package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/casedesk/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the error
// with stack trace using slog, and responds with the standard envelope:
//
//	{"code": 500, "message": "internal server error", "data": null}
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, pkg.Response{
					Code:    http.StatusInternalServerError,
					Message: "internal server error",
				})
			}
		}()
		c.Next()
	}
}
