package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig configures cross-origin access to the record API.
type CORSConfig struct {
	// AllowOrigins lists the origins allowed to call the API. ["*"] allows
	// any origin; an empty list allows none.
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	// ExposeHeaders are the response headers a browser client may read.
	ExposeHeaders    []string
	AllowCredentials bool
	// MaxAge is how long a preflight result may be cached. Zero omits the header.
	MaxAge time.Duration
}

// DefaultCORSConfig allows any origin to use the record routes, the token
// endpoint and the request id and bearer challenge headers.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader, "WWW-Authenticate"},
		MaxAge:        24 * time.Hour,
	}
}

// CORSWithConfig answers preflight requests with 204 and adds the CORS
// headers to requests from allowed origins. Requests from other origins pass
// through without CORS headers, so the browser blocks them.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	anyOrigin := slices.Contains(cfg.AllowOrigins, "*")
	origins := make(map[string]struct{}, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		origins[o] = struct{}{}
	}

	headers := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(cfg.AllowMethods, ", "),
		"Access-Control-Allow-Headers":  strings.Join(cfg.AllowHeaders, ", "),
		"Access-Control-Expose-Headers": strings.Join(cfg.ExposeHeaders, ", "),
	}
	if cfg.MaxAge > 0 {
		headers["Access-Control-Max-Age"] = strconv.Itoa(int(cfg.MaxAge / time.Second))
	}
	if cfg.AllowCredentials {
		headers["Access-Control-Allow-Credentials"] = "true"
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		c.Writer.Header().Add("Vary", "Origin")

		_, listed := origins[origin]
		switch {
		case anyOrigin && !cfg.AllowCredentials:
			c.Header("Access-Control-Allow-Origin", "*")
		case anyOrigin || listed:
			// A credentialed response may not use the wildcard.
			c.Header("Access-Control-Allow-Origin", origin)
		default:
			c.Next()
			return
		}
		for k, v := range headers {
			if v != "" {
				c.Header(k, v)
			}
		}

		if isPreflight(c.Request) {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
