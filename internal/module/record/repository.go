package record

import (
	"context"
	"errors"
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/casedesk/internal/domain"
	"github.com/simp-lee/casedesk/internal/pkg"
	"github.com/simp-lee/casedesk/internal/schema"
)

// Columns whitelists the columns a List query may touch.
type Columns struct {
	Sort   []string
	Filter []string
	Search []string
}

// ColumnsFor derives the whitelist from a schema: every field is sortable,
// filterable and searchable fields may be filtered (searchable ones through
// "__like"), and searchable fields back the free-text search.
func ColumnsFor(s *schema.Schema) Columns {
	sortable := append([]string{"id", "created_at", "updated_at"}, s.Columns()...)

	filter := slices.Clone(s.FilterKeys())
	for _, k := range s.SearchKeys() {
		if !slices.Contains(filter, k) {
			filter = append(filter, k)
		}
	}

	return Columns{
		Sort:   sortable,
		Filter: filter,
		Search: s.SearchKeys(),
	}
}

// repository implements domain.RecordRepository using GORM.
type repository[T domain.Record] struct {
	db   *gorm.DB
	cols Columns
}

// NewRepository creates a RecordRepository for T backed by db.
func NewRepository[T domain.Record](db *gorm.DB, cols Columns) domain.RecordRepository[T] {
	return &repository[T]{db: db, cols: cols}
}

func (r *repository[T]) Create(ctx context.Context, rec *T) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &rec, nil
}

// List returns a paginated, searched, sorted and filtered page of records.
func (r *repository[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(new(T)).
		Scopes(
			pkg.Filter(req, r.cols.Filter),
			pkg.Search(req, r.cols.Search),
		)

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	var items []T
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, r.cols.Sort),
	).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}

	return pkg.NewPage(items, total, req), nil
}

// Update loads the record, lets apply modify it and saves it, all inside one
// transaction. Errors returned by apply are passed through unchanged; a
// transaction that cannot begin or commit is a database error.
func (r *repository[T]) Update(ctx context.Context, id uint, apply func(rec *T) error) (*T, error) {
	var out *T
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var rec T
		if err := tx.First(&rec, id).Error; err != nil {
			return mapError(err)
		}
		if err := apply(&rec); err != nil {
			return err
		}
		if err := tx.Save(&rec).Error; err != nil {
			return mapError(err)
		}
		out = &rec
		return nil
	})
	if errors.Is(err, pkg.ErrTxFailed) {
		return nil, mapError(err)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. Not all GORM dialectors translate driver-level errors to
// gorm.ErrDuplicatedKey (the pure-Go SQLite driver does not).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
