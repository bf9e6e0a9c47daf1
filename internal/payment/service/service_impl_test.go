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
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	paymentrepo "github.com/smallbiznis/netbill/internal/payment/repository"
	paymentservice "github.com/smallbiznis/netbill/internal/payment/service"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	seqrepo "github.com/smallbiznis/netbill/internal/sequence/repository"
	seqservice "github.com/smallbiznis/netbill/internal/sequence/service"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentFixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	svc      paymentdomain.Service
	invoices invoicedomain.Service

	customer *customerdomain.Customer
	invoice  invoicedomain.Invoice
}

func setupPayment(t *testing.T) *paymentFixture {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&seqdomain.Sequence{},
		&catalogdomain.Package{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 12, 10, 14, 0, 0, 0, time.UTC))

	seqSvc := seqservice.New(seqservice.Params{
		Log:  zap.NewNop(),
		Repo: seqrepo.Provide(),
	})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{
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
	svc := paymentservice.New(paymentservice.Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     clk,
		Repo:      paymentrepo.Provide(),
		Customers: customerrepo.Provide(),
		Invoices:  invoicerepo.Provide(),
		Ledger:    invoiceSvc,
		Sequence:  seqSvc,
	})

	f := &paymentFixture{db: gdb, node: node, clock: clk, svc: svc, invoices: invoiceSvc}

	now := clk.Now()
	pkg := &catalogdomain.Package{
		ID:            node.Generate(),
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
		IsActive:      true,
		Type:          catalogdomain.TypeResidential,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, gdb.Create(pkg).Error)

	f.customer = &customerdomain.Customer{
		ID:         node.Generate(),
		Code:       "CUST-0001",
		FullName:   "Budi Santoso",
		Phone:      "081234567890",
		Address:    "Jl. Merdeka 1",
		City:       "Bandung",
		Province:   "Jawa Barat",
		PackageID:  &pkg.ID,
		Status:     customerdomain.StatusActive,
		IsActive:   true,
		BillingDay: 5,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, gdb.Create(f.customer).Error)

	invoice, err := invoiceSvc.GenerateMonthly(context.Background(), invoicedomain.GenerateInvoiceRequest{
		CustomerID: f.customer.ID.String(),
		Month:      "2024-12",
	})
	require.NoError(t, err)
	f.invoice = invoice

	return f
}

func (f *paymentFixture) createPayment(t *testing.T, amount int64) paymentdomain.Payment {
	t.Helper()
	payment, err := f.svc.Create(context.Background(), paymentdomain.CreatePaymentRequest{
		CustomerID: f.customer.ID.String(),
		InvoiceID:  f.invoice.ID.String(),
		Amount:     amount,
		Method:     paymentdomain.MethodBankTransfer,
		BankName:   "BCA",
	})
	require.NoError(t, err)
	return payment
}

func TestCreateAssignsNumberAndDefaults(t *testing.T) {
	f := setupPayment(t)

	payment := f.createPayment(t, 350_000)
	require.Equal(t, "PAY-2024-12-001", payment.Number)
	require.Equal(t, paymentdomain.StatusPending, payment.Status)
	require.True(t, payment.PaymentDate.Equal(f.clock.Now()))
	require.NotNil(t, payment.InvoiceID)
	require.Equal(t, f.invoice.ID, *payment.InvoiceID)
}

func TestCreateRejectsForeignInvoice(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)

	now := f.clock.Now()
	other := &customerdomain.Customer{
		ID:         f.node.Generate(),
		Code:       "CUST-0002",
		FullName:   "Siti Rahma",
		Phone:      "081200000002",
		Address:    "Jl. Asia Afrika 2",
		City:       "Bandung",
		Province:   "Jawa Barat",
		Status:     customerdomain.StatusActive,
		IsActive:   true,
		BillingDay: 1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.db.Create(other).Error)

	_, err := f.svc.Create(ctx, paymentdomain.CreatePaymentRequest{
		CustomerID: other.ID.String(),
		InvoiceID:  f.invoice.ID.String(),
		Amount:     350_000,
		Method:     paymentdomain.MethodCash,
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvoiceMismatch)
}

func TestVerifySettlesLinkedInvoice(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)

	payment := f.createPayment(t, 350_000)
	admin := f.node.Generate().String()

	verified, err := f.svc.Verify(ctx, payment.ID.String(), admin)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusVerified, verified.Status)
	require.NotNil(t, verified.VerifiedBy)
	require.NotNil(t, verified.VerifiedAt)

	invoice, err := f.invoices.GetByID(ctx, f.invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusPaid, invoice.Status)
	require.Equal(t, int64(350_000), invoice.PaidAmount)
	require.NotNil(t, invoice.PaidAt)
}

func TestVerifyPartialAmountLeavesInvoicePartial(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)

	payment := f.createPayment(t, 100_000)
	_, err := f.svc.Verify(ctx, payment.ID.String(), f.node.Generate().String())
	require.NoError(t, err)

	invoice, err := f.invoices.GetByID(ctx, f.invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, invoicedomain.StatusPartial, invoice.Status)
	require.Equal(t, int64(100_000), invoice.PaidAmount)
	require.Nil(t, invoice.PaidAt)
}

func TestTerminalPaymentsRejectFurtherTransitions(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)
	admin := f.node.Generate().String()

	payment := f.createPayment(t, 350_000)
	_, err := f.svc.Verify(ctx, payment.ID.String(), admin)
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, payment.ID.String(), admin)
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyVerified)
	_, err = f.svc.Reject(ctx, payment.ID.String(), admin, "duplicate")
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyVerified)
	_, err = f.svc.Cancel(ctx, payment.ID.String())
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyVerified)

	amount := int64(1)
	_, err = f.svc.Update(ctx, payment.ID.String(), paymentdomain.UpdatePaymentRequest{Amount: &amount})
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyVerified)
}

func TestCancelledPaymentIsFinal(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)

	payment := f.createPayment(t, 350_000)
	cancelled, err := f.svc.Cancel(ctx, payment.ID.String())
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusCancelled, cancelled.Status)

	_, err = f.svc.Verify(ctx, payment.ID.String(), f.node.Generate().String())
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyFinal)
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	f := setupPayment(t)
	admin := f.node.Generate().String()

	payment := f.createPayment(t, 350_000)
	_, err := f.svc.Reject(ctx, payment.ID.String(), admin, "  ")
	require.ErrorIs(t, err, paymentdomain.ErrInvalidReason)

	rejected, err := f.svc.Reject(ctx, payment.ID.String(), admin, "receipt unreadable")
	require.NoError(t, err)
	require.Equal(t, paymentdomain.StatusRejected, rejected.Status)
	require.Equal(t, "receipt unreadable", rejected.RejectionReason)

	// A rejected payment never touches the invoice.
	invoice, err := f.invoices.GetByID(ctx, f.invoice.ID.String())
	require.NoError(t, err)
	require.Equal(t, int64(0), invoice.PaidAmount)
}
