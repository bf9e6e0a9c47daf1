package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	customerrepo "github.com/smallbiznis/netbill/internal/customer/repository"
	"github.com/smallbiznis/netbill/internal/dashboard/domain"
	dashboardrepo "github.com/smallbiznis/netbill/internal/dashboard/repository"
	dashboardservice "github.com/smallbiznis/netbill/internal/dashboard/service"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/netbill/internal/invoice/repository"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/netbill/internal/payment/repository"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type dashboardFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service

	seq int
}

func setupDashboard(t *testing.T) *dashboardFixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&catalogdomain.Package{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC))

	svc := dashboardservice.New(dashboardservice.Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		Clock:     clk,
		Billing:   config.NewStaticBillingConfig(config.DefaultBillingConfig()),
		Repo:      dashboardrepo.Provide(),
		Customers: customerrepo.Provide(),
		Invoices:  invoicerepo.Provide(),
		Payments:  paymentrepo.Provide(),
	})

	return &dashboardFixture{db: gdb, node: node, clock: clk, svc: svc}
}

func (f *dashboardFixture) seedPackage(t *testing.T, name, code string) *catalogdomain.Package {
	t.Helper()
	now := f.clock.Now()
	pkg := &catalogdomain.Package{
		ID:            f.node.Generate(),
		Name:          name,
		Code:          code,
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
		IsActive:      true,
		Type:          catalogdomain.TypeResidential,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(pkg).Error)
	return pkg
}

func (f *dashboardFixture) seedCustomer(t *testing.T, status customerdomain.Status, packageID *snowflake.ID) *customerdomain.Customer {
	t.Helper()
	f.seq++
	now := f.clock.Now()
	customer := &customerdomain.Customer{
		ID:         f.node.Generate(),
		Code:       fmt.Sprintf("CUST-%04d", f.seq),
		FullName:   fmt.Sprintf("Customer %d", f.seq),
		Phone:      fmt.Sprintf("0812%08d", f.seq),
		Address:    "Jl. Merdeka 1",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PackageID:  packageID,
		Status:     status,
		IsActive:   status == customerdomain.StatusActive,
		BillingDay: 5,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *dashboardFixture) seedInvoice(t *testing.T, customerID snowflake.ID, status invoicedomain.Status, total int64, dueDate time.Time, paidAt *time.Time) *invoicedomain.Invoice {
	t.Helper()
	f.seq++
	now := f.clock.Now()
	invoice := &invoicedomain.Invoice{
		ID:            f.node.Generate(),
		Number:        fmt.Sprintf("INV-2024-12-%03d", f.seq),
		CustomerID:    customerID,
		BillingPeriod: "2024-12",
		PeriodStart:   time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		InvoiceDate:   dueDate.AddDate(0, 0, -7),
		DueDate:       dueDate,
		Subtotal:      total,
		TotalAmount:   total,
		Status:        status,
		PaidAt:        paidAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == invoicedomain.StatusPaid {
		invoice.PaidAmount = total
	}
	require.NoError(t, f.db.Create(invoice).Error)
	return invoice
}

func TestStatsAggregates(t *testing.T) {
	ctx := context.Background()
	f := setupDashboard(t)

	pkg := f.seedPackage(t, "Home 20M", "HOME20")
	active := f.seedCustomer(t, customerdomain.StatusActive, &pkg.ID)
	suspended := f.seedCustomer(t, customerdomain.StatusSuspended, &pkg.ID)

	paidAt := f.clock.Now()
	f.seedInvoice(t, active.ID, invoicedomain.StatusPaid, 350_000, time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC), &paidAt)
	f.seedInvoice(t, suspended.ID, invoicedomain.StatusPending, 200_000, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), nil)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	require.Equal(t, int64(2), stats.Customers.Total)
	require.Equal(t, int64(1), stats.Customers.Active)
	require.Equal(t, int64(1), stats.Customers.Suspended)

	require.Equal(t, int64(2), stats.Invoices.Total)
	require.Equal(t, int64(1), stats.Invoices.Paid)
	require.Equal(t, int64(1), stats.Invoices.Pending)

	require.Equal(t, int64(350_000), stats.Revenue.Total)
	require.Equal(t, int64(200_000), stats.Revenue.Pending)
	require.Equal(t, int64(350_000), stats.Revenue.ThisMonth)
	require.Equal(t, int64(0), stats.Revenue.LastMonth)
	// No revenue last month means no growth figure, not a divide by zero.
	require.Equal(t, float64(0), stats.Revenue.GrowthPercentage)
}

func TestRevenueChartBucketsByPaidAt(t *testing.T) {
	ctx := context.Background()
	f := setupDashboard(t)

	pkg := f.seedPackage(t, "Home 20M", "HOME20")
	customer := f.seedCustomer(t, customerdomain.StatusActive, &pkg.ID)

	decPaid := time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)
	novPaid := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	f.seedInvoice(t, customer.ID, invoicedomain.StatusPaid, 350_000, time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC), &decPaid)
	f.seedInvoice(t, customer.ID, invoicedomain.StatusPaid, 150_000, time.Date(2024, 11, 12, 0, 0, 0, 0, time.UTC), &novPaid)

	chart, err := f.svc.RevenueChart(ctx, 3)
	require.NoError(t, err)
	require.Len(t, chart.Data, 3)

	require.Equal(t, "2024-10", chart.Data[0].Month)
	require.Equal(t, int64(0), chart.Data[0].Revenue)
	require.Equal(t, "2024-11", chart.Data[1].Month)
	require.Equal(t, int64(150_000), chart.Data[1].Revenue)
	require.Equal(t, "2024-12", chart.Data[2].Month)
	require.Equal(t, int64(350_000), chart.Data[2].Revenue)
	require.Equal(t, int64(1), chart.Data[2].InvoiceCount)

	require.Equal(t, int64(500_000), chart.TotalRevenue)
	require.Equal(t, int64(500_000)/3, chart.AverageRevenue)
}

func TestPackageDistributionPercentages(t *testing.T) {
	ctx := context.Background()
	f := setupDashboard(t)

	home := f.seedPackage(t, "Home 20M", "HOME20")
	biz := f.seedPackage(t, "Business 50M", "BIZ50")

	f.seedCustomer(t, customerdomain.StatusActive, &home.ID)
	f.seedCustomer(t, customerdomain.StatusActive, &home.ID)
	f.seedCustomer(t, customerdomain.StatusActive, &biz.ID)
	// Suspended subscribers stay out of the distribution.
	f.seedCustomer(t, customerdomain.StatusSuspended, &home.ID)

	dist, err := f.svc.PackageDistribution(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), dist.TotalCustomers)
	require.Len(t, dist.Distribution, 2)

	byCode := make(map[string]domain.PackageShare, len(dist.Distribution))
	for _, share := range dist.Distribution {
		byCode[share.PackageCode] = share
	}
	require.Equal(t, int64(2), byCode["HOME20"].CustomerCount)
	require.InDelta(t, 66.67, byCode["HOME20"].Percentage, 0.01)
	require.Equal(t, int64(1), byCode["BIZ50"].CustomerCount)
	require.InDelta(t, 33.33, byCode["BIZ50"].Percentage, 0.01)
}

func TestOverdueSummaryBuckets(t *testing.T) {
	ctx := context.Background()
	f := setupDashboard(t)

	pkg := f.seedPackage(t, "Home 20M", "HOME20")
	customer := f.seedCustomer(t, customerdomain.StatusActive, &pkg.ID)

	// Today is 2024-12-20. Three days overdue lands in the first bucket,
	// fifteen days in the second.
	f.seedInvoice(t, customer.ID, invoicedomain.StatusOverdue, 350_000, time.Date(2024, 12, 17, 0, 0, 0, 0, time.UTC), nil)
	f.seedInvoice(t, customer.ID, invoicedomain.StatusOverdue, 200_000, time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC), nil)
	// Due today is not overdue yet.
	f.seedInvoice(t, customer.ID, invoicedomain.StatusPending, 100_000, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), nil)

	summary, err := f.svc.OverdueSummary(ctx)
	require.NoError(t, err)

	byLabel := make(map[string]domain.OverdueBucket, len(summary.Buckets))
	for _, bucket := range summary.Buckets {
		byLabel[bucket.Label] = bucket
	}
	require.Equal(t, int64(1), byLabel["1-7"].Count)
	require.Equal(t, int64(350_000), byLabel["1-7"].TotalAmount)
	require.Equal(t, int64(1), byLabel["8-30"].Count)
	require.Equal(t, int64(200_000), byLabel["8-30"].TotalAmount)

	require.Equal(t, int64(2), summary.Total.Count)
	require.Equal(t, int64(550_000), summary.Total.TotalAmount)
}

func TestRecentActivitiesLimit(t *testing.T) {
	ctx := context.Background()
	f := setupDashboard(t)

	pkg := f.seedPackage(t, "Home 20M", "HOME20")
	for i := 0; i < 3; i++ {
		f.seedCustomer(t, customerdomain.StatusActive, &pkg.ID)
	}

	activities, err := f.svc.RecentActivities(ctx, 2)
	require.NoError(t, err)
	require.Len(t, activities.Customers, 2)
	require.Empty(t, activities.Invoices)
	require.Empty(t, activities.Payments)
}
