package auth

import "github.com/gin-gonic/gin"

// AuthModule registers the token endpoint.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers auth API routes.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/token", m.handler.Token)
}
