package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Service allocates gap-free document identifiers. All methods must run
// inside the caller's transaction so an allocation rolls back with the
// row that needed it.
type Service interface {
	NextCustomerCode(ctx context.Context, tx *gorm.DB) (string, error)
	NextInvoiceNumber(ctx context.Context, tx *gorm.DB, period time.Time) (string, error)
	NextPaymentNumber(ctx context.Context, tx *gorm.DB, period time.Time) (string, error)
}
