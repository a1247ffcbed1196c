package auth

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAuthModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	NewModule(&AuthHandler{}).RegisterRoutes(r.Group("/api"))

	found := false
	for _, ri := range r.Routes() {
		if ri.Method == http.MethodPost && ri.Path == "/api/auth/token" {
			found = true
		}
	}
	if !found {
		t.Error("expected route POST /api/auth/token to be registered")
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
