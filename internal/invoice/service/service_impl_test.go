package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/netbill/internal/catalog/repository"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	customerrepo "github.com/smallbiznis/netbill/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/netbill/internal/invoice/repository"
	invoiceservice "github.com/smallbiznis/netbill/internal/invoice/service"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	seqrepo "github.com/smallbiznis/netbill/internal/sequence/repository"
	seqservice "github.com/smallbiznis/netbill/internal/sequence/service"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceFixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   invoicedomain.Service
}

func setupInvoice(t *testing.T) *invoiceFixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&seqdomain.Sequence{},
		&catalogdomain.Package{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC))

	seqSvc := seqservice.New(seqservice.Params{
		Log:  zap.NewNop(),
		Repo: seqrepo.Provide(),
	})
	svc := invoiceservice.New(invoiceservice.Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Billing:   config.NewStaticBillingConfig(config.DefaultBillingConfig()),
		Repo:      invoicerepo.Provide(),
		Customers: customerrepo.Provide(),
		Packages:  catalogrepo.Provide(),
		Sequence:  seqSvc,
	})

	return &invoiceFixture{db: gdb, node: node, clock: clk, svc: svc}
}

func (f *invoiceFixture) seedPackage(t *testing.T, price int64) *catalogdomain.Package {
	t.Helper()
	now := f.clock.Now()
	pkg := &catalogdomain.Package{
		ID:            f.node.Generate(),
		Name:          "Home 20M " + f.node.Generate().String(),
		Code:          "HOME20-" + f.node.Generate().String(),
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         price,
		IsActive:      true,
		Type:          catalogdomain.TypeResidential,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(pkg).Error)
	return pkg
}

func (f *invoiceFixture) seedCustomer(t *testing.T, code string, billingDay int, packageID *snowflake.ID) *customerdomain.Customer {
	t.Helper()
	now := f.clock.Now()
	customer := &customerdomain.Customer{
		ID:         f.node.Generate(),
		Code:       code,
		FullName:   "Budi Santoso",
		Phone:      "081234567890",
		Address:    "Jl. Merdeka 1",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PackageID:  packageID,
		Status:     customerdomain.StatusActive,
		IsActive:   true,
		BillingDay: billingDay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func TestGenerateMonthlyDerivesDatesAndAmounts(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	require.Equal(t, "INV-2024-12-001", invoice.Number)
	require.Equal(t, "2024-12", invoice.BillingPeriod)
	require.True(t, invoice.InvoiceDate.Equal(time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)))
	require.True(t, invoice.DueDate.Equal(time.Date(2024, 12, 12, 0, 0, 0, 0, time.UTC)))
	require.True(t, invoice.PeriodStart.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, invoice.PeriodEnd.Equal(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, int64(350_000), invoice.Subtotal)
	require.Equal(t, int64(350_000), invoice.TotalAmount)
	require.Equal(t, invoicedomain.StatusPending, invoice.Status)
	require.Equal(t, "Internet Service - "+pkg.Name, invoice.Description)
}

func TestGenerateMonthlyRejectsDuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	req := invoicedomain.GenerateInvoiceRequest{CustomerID: customer.ID.String(), Month: "2024-12"}
	_, err := f.svc.GenerateMonthly(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.GenerateMonthly(ctx, req)
	require.ErrorIs(t, err, invoicedomain.ErrPeriodExists)
}

func TestGenerateMonthlyRequiresPackage(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	customer := f.seedCustomer(t, "CUST-0001", 5, nil)

	_, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.ErrorIs(t, err, invoicedomain.ErrNoPackage)
}

func TestGenerateBatchSkipsInvoicedCustomers(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	first := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)
	f.seedCustomer(t, "CUST-0002", 10, &pkg.ID)

	_, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: first.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	report, err := f.svc.GenerateBatch(ctx, "2024-12")
	require.NoError(t, err)
	require.Equal(t, "2024-12", report.Month)
	require.Equal(t, 1, report.Generated)
	require.Equal(t, 1, report.Skipped)
	require.Equal(t, 0, report.Failed)
}

func TestSweepOverdueAppliesLateFeeOnce(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	// Past the 2024-12-12 due date.
	f.clock.Set(time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC))

	swept, err := f.svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	require.Equal(t, invoicedomain.StatusOverdue, swept[0].Status)
	require.Equal(t, int64(50_000), swept[0].LateFee)
	require.Equal(t, int64(400_000), swept[0].TotalAmount)

	// Already overdue, so a second sweep changes nothing.
	swept, err = f.svc.SweepOverdue(ctx)
	require.NoError(t, err)
	require.Empty(t, swept)

	refreshed, err := f.svc.GetByID(ctx, invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, int64(50_000), refreshed.LateFee)
	require.Equal(t, int64(400_000), refreshed.TotalAmount)
}

func TestMarkPaidDerivesStatus(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	partial := int64(100_000)
	updated, err := f.svc.MarkPaid(ctx, invoice.ID.String(), invoicedomain.MarkPaidRequest{PaidAmount: &partial})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusPartial, updated.Status)
	require.Equal(t, partial, updated.PaidAmount)
	require.Nil(t, updated.PaidAt)

	updated, err = f.svc.MarkPaid(ctx, invoice.ID.String(), invoicedomain.MarkPaidRequest{})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusPaid, updated.Status)
	require.Equal(t, int64(350_000), updated.PaidAmount)
	require.NotNil(t, updated.PaidAt)
}

func TestMarkPaidExplicitZeroKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	zero := int64(0)
	updated, err := f.svc.MarkPaid(ctx, invoice.ID.String(), invoicedomain.MarkPaidRequest{PaidAmount: &zero})
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusPending, updated.Status)
	require.Equal(t, int64(0), updated.PaidAmount)
	require.Nil(t, updated.PaidAt)
}

func TestCancelGuards(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.GenerateMonthly(ctx, invoicedomain.GenerateInvoiceRequest{
		CustomerID: customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)

	partial := int64(100_000)
	_, err = f.svc.MarkPaid(ctx, invoice.ID.String(), invoicedomain.MarkPaidRequest{PaidAmount: &partial})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, invoice.ID.String())
	require.ErrorIs(t, err, invoicedomain.ErrHasPayment)

	_, err = f.svc.MarkPaid(ctx, invoice.ID.String(), invoicedomain.MarkPaidRequest{})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, invoice.ID.String())
	require.ErrorIs(t, err, invoicedomain.ErrAlreadyPaid)
}

func TestCreateDerivesTotalFromParts(t *testing.T) {
	ctx := context.Background()
	f := setupInvoice(t)

	pkg := f.seedPackage(t, 350_000)
	customer := f.seedCustomer(t, "CUST-0001", 5, &pkg.ID)

	invoice, err := f.svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CustomerID:    customer.ID.String(),
		BillingPeriod: "2024-12",
		Subtotal:      500_000,
		Discount:      50_000,
		Tax:           55_000,
		Description:   "Installation and first month",
	})
	require.NoError(t, err)
	require.Equal(t, int64(505_000), invoice.TotalAmount)
	require.Equal(t, invoicedomain.StatusPending, invoice.Status)
	// Due date falls back to the invoice date plus the grace period.
	require.True(t, invoice.DueDate.Equal(invoice.InvoiceDate.AddDate(0, 0, 7)))
}
