package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// Increment bumps the counter for scope inside the caller's transaction.
	// Returns ok=false when no row exists yet for the scope.
	Increment(ctx context.Context, db *gorm.DB, scope string) (int64, bool, error)
	Insert(ctx context.Context, db *gorm.DB, seq *Sequence) error
	// MaxNumericSuffix scans existing identifiers with the given prefix and
	// returns the highest numeric suffix. Unparseable values count as zero.
	MaxNumericSuffix(ctx context.Context, db *gorm.DB, table, column, prefix string) (int64, error)
}
