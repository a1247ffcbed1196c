package domain

import (
	"context"
	"strconv"
	"time"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordID returns the decimal form of ID.
func (m BaseModel) RecordID() string {
	return strconv.FormatUint(uint64(m.ID), 10)
}

// Base gives pointer access to the embedded BaseModel.
func (m *BaseModel) Base() *BaseModel {
	return m
}

// Identity is implemented by pointers to types that embed BaseModel.
type Identity interface {
	Base() *BaseModel
}

// Record is implemented by every case record type. The identifier is stable
// and unique within one record type.
type Record interface {
	RecordID() string
}

// PageRequest holds pagination, search, sorting, and filtering parameters.
//
// Filter holds exact-match (or "__like" suffixed substring) conditions keyed
// by column name. Search is a free-text term matched against the searchable
// columns of a record type.
type PageRequest struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Filter map[string]string
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// RecordRepository defines the data access interface for one record type.
type RecordRepository[T Record] interface {
	Create(ctx context.Context, rec *T) error
	GetByID(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, req PageRequest) (*PageResult[T], error)
	// Update loads the record, passes it to apply, and saves the result in one
	// transaction.
	Update(ctx context.Context, id uint, apply func(rec *T) error) (*T, error)
	Delete(ctx context.Context, id uint) error
}

// RecordService defines the business logic interface for one record type.
type RecordService[T Record] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	Get(ctx context.Context, id uint) (*T, error)
	List(ctx context.Context, req PageRequest) (*PageResult[T], error)
	Update(ctx context.Context, id uint, apply func(rec *T) error) (*T, error)
	Delete(ctx context.Context, id uint) error
}
