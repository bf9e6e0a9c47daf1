package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListPackageFilter struct {
	IsActive *bool
	Type     PackageType
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pkg *Package) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Package, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Package, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Package, error)
	List(ctx context.Context, db *gorm.DB, filter ListPackageFilter, page pagination.Pagination) ([]*Package, error)
	Count(ctx context.Context, db *gorm.DB, filter ListPackageFilter) (int64, error)
	Update(ctx context.Context, db *gorm.DB, pkg *Package) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// CountSubscribers reports how many customers currently reference the package.
	CountSubscribers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
