package repository

import (
	"context"
	"time"

	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"gorm.io/gorm"
)

// unpaidStatuses are the invoice states that still carry a balance.
var unpaidStatuses = []invoicedomain.Status{
	invoicedomain.StatusPending,
	invoicedomain.StatusPartial,
	invoicedomain.StatusOverdue,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) PaidRevenueTotal(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("coalesce(sum(total_amount), 0)").
		Where("status = ?", invoicedomain.StatusPaid).
		Scan(&total).Error
	return total, err
}

func (r *repo) OutstandingRevenueTotal(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("coalesce(sum(total_amount), 0)").
		Where("status IN ?", unpaidStatuses).
		Scan(&total).Error
	return total, err
}

func (r *repo) PaidRevenueBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, int64, error) {
	row := struct {
		Amount int64
		Count  int64
	}{}
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("coalesce(sum(total_amount), 0) as amount, count(*) as count").
		Where("status = ?", invoicedomain.StatusPaid).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Scan(&row).Error
	return row.Amount, row.Count, err
}

func (r *repo) NewCustomersBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

func (r *repo) CustomersCreatedBefore(ctx context.Context, db *gorm.DB, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("created_at < ?", to).
		Count(&count).Error
	return count, err
}

func (r *repo) ActivePackageShares(ctx context.Context, db *gorm.DB) ([]domain.PackageShare, error) {
	var shares []domain.PackageShare
	err := db.WithContext(ctx).
		Table("packages").
		Select("packages.id as package_id, packages.name as package_name, packages.code as package_code, count(customers.id) as customer_count").
		Joins("JOIN customers ON customers.package_id = packages.id").
		Where("customers.status = ?", customerdomain.StatusActive).
		Group("packages.id, packages.name, packages.code").
		Order("customer_count desc").
		Scan(&shares).Error
	if err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *repo) RecentCustomers(ctx context.Context, db *gorm.DB, limit int) ([]domain.RecentCustomer, error) {
	var rows []domain.RecentCustomer
	err := db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Select("id, code, full_name, status, created_at").
		Order("created_at desc, id desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repo) RecentInvoices(ctx context.Context, db *gorm.DB, limit int) ([]domain.RecentInvoice, error) {
	var rows []domain.RecentInvoice
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("id, invoice_number as number, customer_id, total_amount, status, created_at").
		Order("created_at desc, id desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repo) RecentPayments(ctx context.Context, db *gorm.DB, limit int) ([]domain.RecentPayment, error) {
	var rows []domain.RecentPayment
	err := db.WithContext(ctx).
		Model(&paymentdomain.Payment{}).
		Select("id, payment_number as number, customer_id, amount, status, created_at").
		Order("created_at desc, id desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repo) OverdueBetween(ctx context.Context, db *gorm.DB, from *time.Time, to time.Time) (int64, int64, error) {
	row := struct {
		Count  int64
		Amount int64
	}{}
	stmt := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("count(*) as count, coalesce(sum(total_amount), 0) as amount").
		Where("status IN ?", unpaidStatuses).
		Where("due_date < ?", to)
	if from != nil {
		stmt = stmt.Where("due_date >= ?", *from)
	}
	err := stmt.Scan(&row).Error
	return row.Count, row.Amount, err
}
