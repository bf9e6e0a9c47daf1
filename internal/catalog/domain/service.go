package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/netbill/pkg/db/pagination"
)

type CreatePackageRequest struct {
	Name            string      `json:"name"`
	Code            string      `json:"code"`
	Description     string      `json:"description"`
	DownloadSpeed   int         `json:"download_speed"`
	UploadSpeed     int         `json:"upload_speed"`
	Price           int64       `json:"price"`
	InstallationFee int64       `json:"installation_fee"`
	QuotaGB         int         `json:"quota_gb"`
	IsFeatured      bool        `json:"is_featured"`
	SortOrder       int         `json:"sort_order"`
	Type            PackageType `json:"package_type"`
	Features        string      `json:"features"`
}

// UpdatePackageRequest uses pointers so only supplied fields are written.
type UpdatePackageRequest struct {
	Name            *string      `json:"name"`
	Code            *string      `json:"code"`
	Description     *string      `json:"description"`
	DownloadSpeed   *int         `json:"download_speed"`
	UploadSpeed     *int         `json:"upload_speed"`
	Price           *int64       `json:"price"`
	InstallationFee *int64       `json:"installation_fee"`
	QuotaGB         *int         `json:"quota_gb"`
	IsActive        *bool        `json:"is_active"`
	IsFeatured      *bool        `json:"is_featured"`
	SortOrder       *int         `json:"sort_order"`
	Type            *PackageType `json:"package_type"`
	Features        *string      `json:"features"`
}

type ListPackagesRequest struct {
	IsActive *bool
	Type     string
	Page     pagination.Pagination
}

type ListPackagesResponse struct {
	Packages []Package `json:"packages"`
	Total    int64     `json:"total"`
}

type Service interface {
	Create(ctx context.Context, req CreatePackageRequest) (Package, error)
	Update(ctx context.Context, id string, req UpdatePackageRequest) (Package, error)
	List(ctx context.Context, req ListPackagesRequest) (ListPackagesResponse, error)
	GetByID(ctx context.Context, id string) (Package, error)
	GetByCode(ctx context.Context, code string) (Package, error)
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (Package, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidCode  = errors.New("invalid_code")
	ErrInvalidSpeed = errors.New("invalid_speed")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidType  = errors.New("invalid_package_type")
	ErrNotFound     = errors.New("not_found")
	ErrNameExists   = errors.New("name_already_exists")
	ErrCodeExists   = errors.New("code_already_exists")
	ErrInUse        = errors.New("package_in_use")
)
