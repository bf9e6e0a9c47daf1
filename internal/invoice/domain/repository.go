package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListInvoiceFilter struct {
	CustomerID snowflake.ID
	Status     Status
	Month      string // billing_period
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	FindByPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, period string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*Invoice, error)
	Count(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) (int64, error)
	CountSummary(ctx context.Context, db *gorm.DB) (CountSummary, error)
	// ListDueBefore returns pending/partial invoices whose due date is
	// strictly before the cutoff, for the overdue sweep.
	ListDueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]*Invoice, error)
	ListOverdue(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Invoice, error)
	Update(ctx context.Context, db *gorm.DB, invoice *Invoice) error
}
