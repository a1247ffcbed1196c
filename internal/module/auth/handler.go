package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/casedesk/internal/pkg"
)

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Token handles POST /api/v1/auth/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Token(c.Request.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, resp)
}
