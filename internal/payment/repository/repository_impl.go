package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/payment/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).First(&payment, "payment_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter, page pagination.Pagination) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Payment{}), filter).
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListPaymentFilter) (int64, error) {
	var count int64
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Payment{}), filter).
		Count(&count).Error
	return count, err
}

func (r *repo) CountByStatus(ctx context.Context, db *gorm.DB) (domain.StatusCount, error) {
	rows := []struct {
		Status string
		Count  int64
		Amount int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("status, count(*) as count, coalesce(sum(amount), 0) as amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.StatusCount{}, err
	}

	var counts domain.StatusCount
	for _, row := range rows {
		counts.Total += row.Count
		switch domain.Status(row.Status) {
		case domain.StatusPending:
			counts.Pending = row.Count
		case domain.StatusVerified:
			counts.Verified = row.Count
			counts.VerifiedAmount = row.Amount
		case domain.StatusRejected:
			counts.Rejected = row.Count
		case domain.StatusCancelled:
			counts.Cancelled = row.Count
		}
	}
	return counts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Save(payment).Error
}

func (r *repo) applyFilter(stmt *gorm.DB, filter domain.ListPaymentFilter) *gorm.DB {
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.InvoiceID != 0 {
		stmt = stmt.Where("invoice_id = ?", filter.InvoiceID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		stmt = stmt.Where("payment_method = ?", filter.Method)
	}
	return stmt
}
