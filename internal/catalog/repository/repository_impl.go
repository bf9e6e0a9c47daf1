package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pkg *domain.Package) error {
	return db.WithContext(ctx).Create(pkg).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).First(&pkg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).First(&pkg, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).First(&pkg, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPackageFilter, page pagination.Pagination) ([]*domain.Package, error) {
	var packages []*domain.Package
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Package{}), filter).
		Order("sort_order asc, created_at asc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListPackageFilter) (int64, error) {
	var count int64
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Package{}), filter).
		Count(&count).Error
	return count, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, pkg *domain.Package) error {
	return db.WithContext(ctx).Save(pkg).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Package{}, "id = ?", id).Error
}

func (r *repo) CountSubscribers(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Table("customers").
		Where("package_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repo) applyFilter(stmt *gorm.DB, filter domain.ListPackageFilter) *gorm.DB {
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Type != "" {
		stmt = stmt.Where("package_type = ?", filter.Type)
	}
	return stmt
}
