package record

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/pkg"
)

// Handler handles REST API requests for one record resource.
type Handler[T domain.Record] struct {
	svc domain.RecordService[T]
}

// NewHandler creates a Handler with the given service.
func NewHandler[T domain.Record](svc domain.RecordService[T]) *Handler[T] {
	return &Handler[T]{svc: svc}
}

// Create handles POST /<resource>.
func (h *Handler[T]) Create(c *gin.Context) {
	var rec T
	if !pkg.BindAndValidate(c, &rec) {
		return
	}

	out, err := h.svc.Create(c.Request.Context(), &rec)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    out,
	})
}

// Get handles GET /<resource>/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, rec)
}

// List handles GET /<resource>.
func (h *Handler[T]) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.svc.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Update handles PUT /<resource>/:id. The body is a partial record bound onto
// the stored one; validation runs on the merged result.
func (h *Handler[T]) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var bindErr error
	rec, err := h.svc.Update(c.Request.Context(), id, func(rec *T) error {
		bindErr = pkg.BindError(c.ShouldBindJSON(rec), rec)
		return bindErr
	})
	if err != nil {
		if bindErr != nil && !domain.IsValidation(bindErr) {
			// Malformed body.
			pkg.ValidationError(c, bindErr)
			return
		}
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, rec)
}

// Delete handles DELETE /<resource>/:id.
func (h *Handler[T]) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// parseID extracts and validates the :id path parameter.
func parseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}
