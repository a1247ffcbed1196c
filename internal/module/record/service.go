package record

import (
	"context"

	"github.com/simp-lee/casedesk/internal/domain"
)

// service implements domain.RecordService. Field validation happens at the
// binding layer; the service owns record identity.
type service[T domain.Record] struct {
	repo domain.RecordRepository[T]
}

// NewService creates a RecordService over repo.
func NewService[T domain.Record](repo domain.RecordRepository[T]) domain.RecordService[T] {
	return &service[T]{repo: repo}
}

// Create clears any client-supplied identity and persists rec.
func (s *service[T]) Create(ctx context.Context, rec *T) (*T, error) {
	if id, ok := any(rec).(domain.Identity); ok {
		*id.Base() = domain.BaseModel{}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service[T]) Get(ctx context.Context, id uint) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	return s.repo.List(ctx, req)
}

// Update overlays apply onto the stored record. id and created_at survive
// whatever apply writes.
func (s *service[T]) Update(ctx context.Context, id uint, apply func(rec *T) error) (*T, error) {
	return s.repo.Update(ctx, id, func(rec *T) error {
		ident, ok := any(rec).(domain.Identity)
		if !ok {
			return apply(rec)
		}
		kept := *ident.Base()
		if err := apply(rec); err != nil {
			return err
		}
		ident.Base().ID = kept.ID
		ident.Base().CreatedAt = kept.CreatedAt
		return nil
	})
}

func (s *service[T]) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
