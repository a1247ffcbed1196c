package pkg

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrTxFailed marks a transaction that could not begin or commit. Errors
// returned by the transaction body never carry it.
var ErrTxFailed = errors.New("transaction failed")

// WithTx runs fn in a transaction bound to ctx. A nil return commits; an
// error or panic rolls back, and fn's error or panic is passed on unchanged.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: begin: %w", ErrTxFailed, tx.Error)
	}

	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTxFailed, err)
	}
	committed = true
	return nil
}
