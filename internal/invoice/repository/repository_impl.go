package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).First(&invoice, "invoice_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, customerID snowflake.ID, period string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).
		First(&invoice, "customer_id = ? AND billing_period = ?", customerID, period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Invoice{}), filter).
		Order("created_at desc, id desc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) (int64, error) {
	var count int64
	err := r.applyFilter(db.WithContext(ctx).Model(&domain.Invoice{}), filter).
		Count(&count).Error
	return count, err
}

func (r *repo) CountSummary(ctx context.Context, db *gorm.DB) (domain.CountSummary, error) {
	rows := []struct {
		Status string
		Count  int64
		Total  int64
		Paid   int64
	}{}
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, count(*) as count, coalesce(sum(total_amount), 0) as total, coalesce(sum(paid_amount), 0) as paid").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return domain.CountSummary{}, err
	}

	var summary domain.CountSummary
	for _, row := range rows {
		summary.Total += row.Count
		switch domain.Status(row.Status) {
		case domain.StatusPending:
			summary.Pending = row.Count
			summary.OutstandingAmount += row.Total - row.Paid
		case domain.StatusPartial:
			summary.Partial = row.Count
			summary.OutstandingAmount += row.Total - row.Paid
		case domain.StatusPaid:
			summary.Paid = row.Count
			summary.PaidAmount += row.Paid
		case domain.StatusOverdue:
			summary.Overdue = row.Count
			summary.OutstandingAmount += row.Total - row.Paid
		case domain.StatusCancelled:
			summary.Cancelled = row.Count
		}
	}
	return summary, nil
}

func (r *repo) ListDueBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status IN ?", []domain.Status{domain.StatusPending, domain.StatusPartial}).
		Where("due_date < ?", cutoff).
		Order("due_date asc, id asc").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) ListOverdue(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("status = ?", domain.StatusOverdue).
		Order("due_date asc, id asc").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Save(invoice).Error
}

func (r *repo) applyFilter(stmt *gorm.DB, filter domain.ListInvoiceFilter) *gorm.DB {
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Month != "" {
		stmt = stmt.Where("billing_period = ?", filter.Month)
	}
	return stmt
}
