package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/casedesk/internal/pkg"
)

const clientIDContextKey = "client_id"

// TokenVerifier validates a bearer token and returns the client id it was
// issued to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth returns a gin middleware that rejects requests without a valid
// "Authorization: Bearer <token>" header with 401. The verified client id is
// stored under "client_id" in gin.Context and in the logging context.
func Auth(v TokenVerifier) gin.HandlerFunc {
	if v == nil {
		panic("middleware.Auth: verifier must not be nil")
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing bearer token")
			return
		}

		clientID, err := v.Verify(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(clientIDContextKey, clientID)
		ctx := logger.WithContextAttrs(c.Request.Context(), slog.String("client_id", clientID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetClientID returns the client id set by Auth, or "" when the request was
// not authenticated.
func GetClientID(c *gin.Context) string {
	return c.GetString(clientIDContextKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="casedesk"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, pkg.Response{
		Code:    http.StatusUnauthorized,
		Message: msg,
	})
}
