package service_test

import (
	"context"
	"testing"
	"time"

	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	seqrepo "github.com/smallbiznis/netbill/internal/sequence/repository"
	seqservice "github.com/smallbiznis/netbill/internal/sequence/service"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupSequence(t *testing.T) (*gorm.DB, seqdomain.Service) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&seqdomain.Sequence{},
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&paymentdomain.Payment{},
	))

	svc := seqservice.New(seqservice.Params{
		Log:  zap.NewNop(),
		Repo: seqrepo.Provide(),
	})
	return gdb, svc
}

func TestNextCustomerCodeIncrements(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupSequence(t)

	first, err := svc.NextCustomerCode(ctx, gdb)
	require.NoError(t, err)
	require.Equal(t, "CUST-0001", first)

	second, err := svc.NextCustomerCode(ctx, gdb)
	require.NoError(t, err)
	require.Equal(t, "CUST-0002", second)
}

func TestNextCustomerCodeSeedsFromExistingData(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupSequence(t)

	require.NoError(t, gdb.Exec(
		`INSERT INTO customers (id, code, full_name, email, phone, address, city, province, status, is_active, billing_day, created_at, updated_at)
		 VALUES (1, 'CUST-0041', 'Imported', '', '0811', 'Jl.', 'Bandung', 'Jawa Barat', 'active', 1, 1, ?, ?)`,
		time.Now().UTC(), time.Now().UTC(),
	).Error)

	code, err := svc.NextCustomerCode(ctx, gdb)
	require.NoError(t, err)
	require.Equal(t, "CUST-0042", code)
}

func TestInvoiceNumbersResetPerMonth(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupSequence(t)

	dec := time.Date(2024, 12, 5, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	first, err := svc.NextInvoiceNumber(ctx, gdb, dec)
	require.NoError(t, err)
	require.Equal(t, "INV-2024-12-001", first)

	second, err := svc.NextInvoiceNumber(ctx, gdb, dec)
	require.NoError(t, err)
	require.Equal(t, "INV-2024-12-002", second)

	next, err := svc.NextInvoiceNumber(ctx, gdb, jan)
	require.NoError(t, err)
	require.Equal(t, "INV-2025-01-001", next)
}

func TestNextPaymentNumberFormat(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupSequence(t)

	number, err := svc.NextPaymentNumber(ctx, gdb, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "PAY-2024-12-001", number)
}
