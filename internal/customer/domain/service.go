package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/netbill/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	IDCardNumber string `json:"id_card_number"`

	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`

	InstallationAddress string `json:"installation_address"`
	InstallationNotes   string `json:"installation_notes"`

	PackageID string `json:"package_id"`

	IPAddress      string `json:"ip_address"`
	RouterUsername string `json:"router_username"`
	RouterPassword string `json:"router_password"`

	BillingDay  int  `json:"billing_day"`
	AutoPayment bool `json:"auto_payment"`

	InstallationDate *time.Time `json:"installation_date"`

	Notes string `json:"notes"`
}

// UpdateCustomerRequest uses pointers so only supplied fields are written.
// The customer code and lifecycle status are not updatable through this path.
type UpdateCustomerRequest struct {
	FullName     *string `json:"full_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	IDCardNumber *string `json:"id_card_number"`

	Address    *string `json:"address"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postal_code"`

	InstallationAddress *string `json:"installation_address"`
	InstallationNotes   *string `json:"installation_notes"`

	PackageID *string `json:"package_id"`

	IPAddress      *string `json:"ip_address"`
	RouterUsername *string `json:"router_username"`
	RouterPassword *string `json:"router_password"`

	BillingDay  *int  `json:"billing_day"`
	AutoPayment *bool `json:"auto_payment"`

	InstallationDate *time.Time `json:"installation_date"`

	Notes *string `json:"notes"`
}

type ListCustomersRequest struct {
	Search    string
	Status    string
	PackageID string
	City      string
	Page      pagination.Pagination
}

type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (Customer, error)
	List(ctx context.Context, req ListCustomersRequest) (ListCustomersResponse, error)
	Count(ctx context.Context) (StatusCount, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Suspend(ctx context.Context, id string) (Customer, error)
	Activate(ctx context.Context, id string) (Customer, error)
	// Delete terminates the customer. Records are never removed.
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidAddress    = errors.New("invalid_address")
	ErrInvalidBillingDay = errors.New("invalid_billing_day")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNotFound          = errors.New("not_found")
	ErrEmailExists       = errors.New("email_already_exists")
	ErrPackageNotFound   = errors.New("package_not_found")
)
