// Package listctl implements the record list controller shared by every
// record type: search, filters, pagination, the create/edit modal and
// two-step removal, reconciled against a RecordAPI.
package listctl

import (
	"context"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/schema"
)

// API is the remote collaborator for one record type.
//
// Implementations report failures as *domain.AppError: CodeUnavailable when
// the server could not be reached, CodeValidation with field messages when
// input was rejected, CodeNotFound for stale ids and CodeInternal otherwise.
type API[T domain.Record] interface {
	List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error)
	Create(ctx context.Context, body schema.Body) (*T, error)
	Update(ctx context.Context, id string, body schema.Body) (*T, error)
	Delete(ctx context.Context, id string) error
}
