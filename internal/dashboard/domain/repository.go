package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository holds the raw aggregate queries the dashboard is built from.
// All ranges are half-open: from inclusive, to exclusive.
type Repository interface {
	PaidRevenueTotal(ctx context.Context, db *gorm.DB) (int64, error)
	OutstandingRevenueTotal(ctx context.Context, db *gorm.DB) (int64, error)
	PaidRevenueBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (amount int64, count int64, err error)
	NewCustomersBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	CustomersCreatedBefore(ctx context.Context, db *gorm.DB, to time.Time) (int64, error)
	ActivePackageShares(ctx context.Context, db *gorm.DB) ([]PackageShare, error)
	RecentCustomers(ctx context.Context, db *gorm.DB, limit int) ([]RecentCustomer, error)
	RecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]RecentInvoice, error)
	RecentPayments(ctx context.Context, db *gorm.DB, limit int) ([]RecentPayment, error)
	// OverdueBetween aggregates unpaid invoices whose due date falls in
	// [from, to). A nil from leaves the range unbounded below.
	OverdueBetween(ctx context.Context, db *gorm.DB, from *time.Time, to time.Time) (count int64, amount int64, err error)
}
