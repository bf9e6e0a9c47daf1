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
	"github.com/smallbiznis/netbill/internal/customer/domain"
	customerrepo "github.com/smallbiznis/netbill/internal/customer/repository"
	customerservice "github.com/smallbiznis/netbill/internal/customer/service"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	seqrepo "github.com/smallbiznis/netbill/internal/sequence/repository"
	seqservice "github.com/smallbiznis/netbill/internal/sequence/service"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCustomer(t *testing.T) (*gorm.DB, *clock.FakeClock, domain.Service) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&seqdomain.Sequence{},
		&catalogdomain.Package{},
		&domain.Customer{},
	))

	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC))

	seqSvc := seqservice.New(seqservice.Params{
		Log:  zap.NewNop(),
		Repo: seqrepo.Provide(),
	})
	svc := customerservice.New(customerservice.Params{
		DB:       gdb,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Billing:  config.NewStaticBillingConfig(config.DefaultBillingConfig()),
		Repo:     customerrepo.Provide(),
		Packages: catalogrepo.Provide(),
		Sequence: seqSvc,
	})
	return gdb, clk, svc
}

func createReq(name, email string) domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		FullName: name,
		Email:    email,
		Phone:    "081234567890",
		Address:  "Jl. Merdeka 1",
		City:     "Bandung",
		Province: "Jawa Barat",
	}
}

func TestCreateAssignsSequentialCodes(t *testing.T) {
	ctx := context.Background()
	_, clk, svc := setupCustomer(t)

	first, err := svc.Create(ctx, createReq("Budi Santoso", "budi@example.com"))
	require.NoError(t, err)
	require.Equal(t, "CUST-0001", first.Code)
	require.Equal(t, domain.StatusActive, first.Status)
	require.True(t, first.IsActive)
	require.NotNil(t, first.ActivationDate)
	require.True(t, first.ActivationDate.Equal(clk.Now()))

	second, err := svc.Create(ctx, createReq("Siti Rahma", "siti@example.com"))
	require.NoError(t, err)
	require.Equal(t, "CUST-0002", second.Code)
}

func TestCreateDefaultsBillingDay(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCustomer(t)

	customer, err := svc.Create(ctx, createReq("Budi Santoso", ""))
	require.NoError(t, err)
	require.Equal(t, config.DefaultBillingConfig().DefaultBillingDay, customer.BillingDay)

	req := createReq("Siti Rahma", "")
	req.BillingDay = 29
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidBillingDay)
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCustomer(t)

	req := createReq("", "")
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidName)

	req = createReq("Budi Santoso", "not-an-email")
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidEmail)

	req = createReq("Budi Santoso", "")
	req.City = ""
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCustomer(t)

	_, err := svc.Create(ctx, createReq("Budi Santoso", "budi@example.com"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, createReq("Budi Lain", "budi@example.com"))
	require.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestLifecycleTransitions(t *testing.T) {
	ctx := context.Background()
	_, clk, svc := setupCustomer(t)

	customer, err := svc.Create(ctx, createReq("Budi Santoso", "budi@example.com"))
	require.NoError(t, err)
	activatedAt := *customer.ActivationDate

	suspended, err := svc.Suspend(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuspended, suspended.Status)
	require.False(t, suspended.IsActive)

	clk.Advance(48 * time.Hour)
	reactivated, err := svc.Activate(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, reactivated.Status)
	require.True(t, reactivated.IsActive)
	// The original activation date survives re-activation.
	require.True(t, reactivated.ActivationDate.Equal(activatedAt))

	require.NoError(t, svc.Delete(ctx, customer.ID.String()))
	terminated, err := svc.GetByID(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Equal(t, domain.StatusTerminated, terminated.Status)
	require.False(t, terminated.IsActive)
	require.NotNil(t, terminated.TerminationDate)
	require.True(t, terminated.TerminationDate.Equal(clk.Now()))
}

func TestCreateWithUnknownPackage(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCustomer(t)

	req := createReq("Budi Santoso", "")
	req.PackageID = "123456789"
	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrPackageNotFound)
}

func TestCountByStatus(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCustomer(t)

	a, err := svc.Create(ctx, createReq("Budi Santoso", ""))
	require.NoError(t, err)
	_, err = svc.Create(ctx, createReq("Siti Rahma", ""))
	require.NoError(t, err)

	_, err = svc.Suspend(ctx, a.ID.String())
	require.NoError(t, err)

	counts, err := svc.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), counts.Total)
	require.Equal(t, int64(1), counts.Active)
	require.Equal(t, int64(1), counts.Suspended)
}
