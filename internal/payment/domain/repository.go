package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPaymentFilter struct {
	CustomerID snowflake.ID
	InvoiceID  snowflake.ID
	Status     Status
	Method     Method
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Payment, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Payment, error)
	List(ctx context.Context, db *gorm.DB, filter ListPaymentFilter, page pagination.Pagination) ([]*Payment, error)
	Count(ctx context.Context, db *gorm.DB, filter ListPaymentFilter) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (StatusCount, error)
	Update(ctx context.Context, db *gorm.DB, payment *Payment) error
}
