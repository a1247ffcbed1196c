package record

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/schema"
)

// Module serves one record type under its resource path.
type Module[T domain.Record] struct {
	path    string
	handler *Handler[T]
}

// NewModule creates a Module serving h under path (e.g. "health/addiction-cases").
// Panics if h is nil or path is empty.
func NewModule[T domain.Record](path string, h *Handler[T]) *Module[T] {
	path = strings.Trim(path, "/")
	if h == nil {
		panic("record.NewModule: handler must not be nil")
	}
	if path == "" {
		panic("record.NewModule: path must not be empty")
	}
	return &Module[T]{path: path, handler: h}
}

// New wires repository, service and handler for T over db.
func New[T domain.Record](db *gorm.DB, path string, s *schema.Schema) *Module[T] {
	repo := NewRepository[T](db, ColumnsFor(s))
	return NewModule(path, NewHandler(NewService(repo)))
}

// Path returns the resource path relative to the API group.
func (m *Module[T]) Path() string {
	return m.path
}

// RegisterRoutes registers the record routes on api.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/" + m.path)
	g.POST("", m.handler.Create)
	g.GET("/:id", m.handler.Get)
	g.GET("", m.handler.List)
	g.PUT("/:id", m.handler.Update)
	g.DELETE("/:id", m.handler.Delete)
}
