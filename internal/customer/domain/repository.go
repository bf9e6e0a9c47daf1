package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerFilter struct {
	Search    string
	Status    Status
	PackageID snowflake.ID
	City      string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, customer *Customer) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]*Customer, error)
	Count(ctx context.Context, db *gorm.DB, filter ListCustomerFilter) (int64, error)
	CountByStatus(ctx context.Context, db *gorm.DB) (StatusCount, error)
	// ListActiveWithPackage returns active customers that have a package
	// assigned, for batch invoice generation.
	ListActiveWithPackage(ctx context.Context, db *gorm.DB) ([]*Customer, error)
	Update(ctx context.Context, db *gorm.DB, customer *Customer) error
}
