package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/netbill/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/netbill/internal/catalog/service"
	"github.com/smallbiznis/netbill/internal/clock"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalog(t *testing.T) (*gorm.DB, *snowflake.Node, domain.Service) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&domain.Package{},
		&customerdomain.Customer{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	svc := catalogservice.New(catalogservice.Params{
		DB:    gdb,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  catalogrepo.Provide(),
	})
	return gdb, node, svc
}

func TestCreatePackageValidation(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCatalog(t)

	_, err := svc.Create(ctx, domain.CreatePackageRequest{
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 0,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.ErrorIs(t, err, domain.ErrInvalidSpeed)

	_, err = svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestCreatePackageDefaultsToResidential(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCatalog(t)

	pkg, err := svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TypeResidential, pkg.Type)
	require.True(t, pkg.IsActive)
}

func TestCreatePackageRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCatalog(t)

	_, err := svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "OTHER",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.ErrorIs(t, err, domain.ErrNameExists)

	_, err = svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Business 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         750_000,
	})
	require.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestDeletePackageInUse(t *testing.T) {
	ctx := context.Background()
	gdb, node, svc := setupCatalog(t)

	pkg, err := svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	subscriber := &customerdomain.Customer{
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
	require.NoError(t, gdb.Create(subscriber).Error)

	err = svc.Delete(ctx, pkg.ID.String())
	require.ErrorIs(t, err, domain.ErrInUse)

	// Detach the subscriber and the delete goes through.
	require.NoError(t, gdb.Model(subscriber).Update("package_id", nil).Error)
	require.NoError(t, svc.Delete(ctx, pkg.ID.String()))

	_, err = svc.GetByID(ctx, pkg.ID.String())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleStatusFlips(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCatalog(t)

	pkg, err := svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.NoError(t, err)
	require.True(t, pkg.IsActive)

	pkg, err = svc.ToggleStatus(ctx, pkg.ID.String())
	require.NoError(t, err)
	require.False(t, pkg.IsActive)

	pkg, err = svc.ToggleStatus(ctx, pkg.ID.String())
	require.NoError(t, err)
	require.True(t, pkg.IsActive)
}

func TestGetByCode(t *testing.T) {
	ctx := context.Background()
	_, _, svc := setupCatalog(t)

	created, err := svc.Create(ctx, domain.CreatePackageRequest{
		Name:          "Home 20M",
		Code:          "HOME20",
		DownloadSpeed: 20,
		UploadSpeed:   10,
		Price:         350_000,
	})
	require.NoError(t, err)

	found, err := svc.GetByCode(ctx, "HOME20")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.GetByCode(ctx, "MISSING")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
