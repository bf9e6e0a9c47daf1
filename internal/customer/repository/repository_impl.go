package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).First(&customer, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Customer{}), filter).
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListCustomerFilter) (int64, error) {
	var count int64
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Customer{}), filter).
		Count(&count).Error
	return count, err
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (domain.StatusCount, error) {
	rows := []struct {
		Status string
		Count  int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.StatusCount{}, err
	}

	var counts domain.StatusCount
	for _, row := range rows {
		counts.Total += row.Count
		switch domain.Status(row.Status) {
		case domain.StatusActive:
			counts.Active = row.Count
		case domain.StatusSuspended:
			counts.Suspended = row.Count
		case domain.StatusInactive:
			counts.Inactive = row.Count
		case domain.StatusTerminated:
			counts.Terminated = row.Count
		}
	}
	return counts, nil
}

func (r *repo) ListActiveWithPackage(ctx context.Context, db *gorm.DB) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("status = ?", domain.StatusActive).
		Where("package_id IS NOT NULL").
		Order("id asc").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Save(customer).Error
}

func (r *repo) applyFilter(stmt *gorm.DB, filter domain.ListCustomerFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where(
			"lower(full_name) LIKE ? OR lower(code) LIKE ? OR lower(phone) LIKE ? OR lower(email) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.PackageID != 0 {
		stmt = stmt.Where("package_id = ?", filter.PackageID)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		stmt = stmt.Where("lower(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	return stmt
}
