package service

import (
	"context"
	"math"
	"time"

	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultChartMonths = 12
	maxChartMonths     = 36
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Billing   *config.BillingConfigHolder
	Repo      domain.Repository
	Customers customerdomain.Repository
	Invoices  invoicedomain.Repository
	Payments  paymentdomain.Repository
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	billing   *config.BillingConfigHolder
	repo      domain.Repository
	customers customerdomain.Repository
	invoices  invoicedomain.Repository
	payments  paymentdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("dashboard.service"),
		clock:     p.Clock,
		billing:   p.Billing,
		repo:      p.Repo,
		customers: p.Customers,
		invoices:  p.Invoices,
		payments:  p.Payments,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	customers, err := s.customers.CountByStatus(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}
	invoices, err := s.invoices.CountSummary(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}
	payments, err := s.payments.CountByStatus(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}

	totalRevenue, err := s.repo.PaidRevenueTotal(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}
	pendingRevenue, err := s.repo.OutstandingRevenueTotal(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}

	thisMonthStart := monthStart(s.clock.Now())
	nextMonthStart := thisMonthStart.AddDate(0, 1, 0)
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	thisMonth, _, err := s.repo.PaidRevenueBetween(ctx, s.db, thisMonthStart, nextMonthStart)
	if err != nil {
		return domain.Stats{}, err
	}
	lastMonth, _, err := s.repo.PaidRevenueBetween(ctx, s.db, lastMonthStart, thisMonthStart)
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		Customers: domain.CustomerStats{
			Total:     customers.Total,
			Active:    customers.Active,
			Suspended: customers.Suspended,
		},
		Invoices: domain.InvoiceStats{
			Total:   invoices.Total,
			Pending: invoices.Pending,
			Paid:    invoices.Paid,
			Overdue: invoices.Overdue,
		},
		Payments: domain.PaymentStats{
			Total:    payments.Total,
			Pending:  payments.Pending,
			Verified: payments.Verified,
		},
		Revenue: domain.RevenueStats{
			Total:            totalRevenue,
			Pending:          pendingRevenue,
			ThisMonth:        thisMonth,
			LastMonth:        lastMonth,
			GrowthPercentage: growthPercentage(thisMonth, lastMonth),
		},
	}, nil
}

func (s *Service) RevenueChart(ctx context.Context, months int) (domain.RevenueChart, error) {
	months = clampMonths(months)

	var chart domain.RevenueChart
	current := monthStart(s.clock.Now())
	for i := months - 1; i >= 0; i-- {
		from := current.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		revenue, count, err := s.repo.PaidRevenueBetween(ctx, s.db, from, to)
		if err != nil {
			return domain.RevenueChart{}, err
		}
		chart.Data = append(chart.Data, domain.RevenuePoint{
			Month:        from.Format("2006-01"),
			MonthName:    from.Format("January 2006"),
			Revenue:      revenue,
			InvoiceCount: count,
		})
		chart.TotalRevenue += revenue
	}
	chart.AverageRevenue = chart.TotalRevenue / int64(months)

	return chart, nil
}

func (s *Service) CustomerGrowth(ctx context.Context, months int) (domain.CustomerGrowth, error) {
	months = clampMonths(months)

	var growth domain.CustomerGrowth
	current := monthStart(s.clock.Now())
	for i := months - 1; i >= 0; i-- {
		from := current.AddDate(0, -i, 0)
		to := from.AddDate(0, 1, 0)

		added, err := s.repo.NewCustomersBetween(ctx, s.db, from, to)
		if err != nil {
			return domain.CustomerGrowth{}, err
		}
		total, err := s.repo.CustomersCreatedBefore(ctx, s.db, to)
		if err != nil {
			return domain.CustomerGrowth{}, err
		}
		growth.Data = append(growth.Data, domain.GrowthPoint{
			Month:          from.Format("2006-01"),
			MonthName:      from.Format("January 2006"),
			NewCustomers:   added,
			TotalCustomers: total,
		})
	}

	return growth, nil
}

func (s *Service) PackageDistribution(ctx context.Context) (domain.PackageDistribution, error) {
	shares, err := s.repo.ActivePackageShares(ctx, s.db)
	if err != nil {
		return domain.PackageDistribution{}, err
	}

	var dist domain.PackageDistribution
	for _, share := range shares {
		dist.TotalCustomers += share.CustomerCount
	}
	for _, share := range shares {
		if dist.TotalCustomers > 0 {
			share.Percentage = round2(float64(share.CustomerCount) / float64(dist.TotalCustomers) * 100)
		}
		dist.Distribution = append(dist.Distribution, share)
	}

	return dist, nil
}

func (s *Service) RecentActivities(ctx context.Context, limit int) (domain.RecentActivities, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	customers, err := s.repo.RecentCustomers(ctx, s.db, limit)
	if err != nil {
		return domain.RecentActivities{}, err
	}
	invoices, err := s.repo.RecentInvoices(ctx, s.db, limit)
	if err != nil {
		return domain.RecentActivities{}, err
	}
	payments, err := s.repo.RecentPayments(ctx, s.db, limit)
	if err != nil {
		return domain.RecentActivities{}, err
	}

	return domain.RecentActivities{
		Customers: customers,
		Invoices:  invoices,
		Payments:  payments,
	}, nil
}

func (s *Service) OverdueSummary(ctx context.Context) (domain.OverdueSummary, error) {
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var summary domain.OverdueSummary
	for _, bucket := range s.billing.Get().AgingBuckets {
		to := today.AddDate(0, 0, -(bucket.MinDays - 1))
		var from *time.Time
		if bucket.MaxDays != nil {
			lower := today.AddDate(0, 0, -*bucket.MaxDays)
			from = &lower
		}

		count, amount, err := s.repo.OverdueBetween(ctx, s.db, from, to)
		if err != nil {
			return domain.OverdueSummary{}, err
		}
		summary.Buckets = append(summary.Buckets, domain.OverdueBucket{
			Label:       bucket.Label,
			Count:       count,
			TotalAmount: amount,
		})
	}

	count, amount, err := s.repo.OverdueBetween(ctx, s.db, nil, today)
	if err != nil {
		return domain.OverdueSummary{}, err
	}
	summary.Total = domain.OverdueBucket{Label: "total", Count: count, TotalAmount: amount}

	return summary, nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func growthPercentage(thisMonth, lastMonth int64) float64 {
	if lastMonth <= 0 {
		return 0
	}
	return round2(float64(thisMonth-lastMonth) / float64(lastMonth) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampMonths(months int) int {
	if months <= 0 {
		return defaultChartMonths
	}
	if months > maxChartMonths {
		return maxChartMonths
	}
	return months
}
