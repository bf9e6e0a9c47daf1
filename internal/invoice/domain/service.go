package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type GenerateInvoiceRequest struct {
	CustomerID string `json:"customer_id"`
	Month      string `json:"month"` // YYYY-MM
}

// CreateInvoiceRequest is the manual creation path. Unlike generation it
// performs no billing-period uniqueness check, so non-recurring charges can
// share a period with the regular monthly invoice.
type CreateInvoiceRequest struct {
	CustomerID    string    `json:"customer_id"`
	BillingPeriod string    `json:"billing_period"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	InvoiceDate   time.Time `json:"invoice_date"`
	DueDate       time.Time `json:"due_date"`
	Subtotal      int64     `json:"subtotal"`
	Discount      int64     `json:"discount"`
	LateFee       int64     `json:"late_fee"`
	Tax           int64     `json:"tax"`
	Description   string    `json:"description"`
	Items         string    `json:"items"`
	Notes         string    `json:"notes"`
	AdminNotes    string    `json:"admin_notes"`
}

// UpdateInvoiceRequest overwrites only supplied fields. The total is not
// re-derived from the parts; the caller owns monetary consistency here.
type UpdateInvoiceRequest struct {
	DueDate     *time.Time `json:"due_date"`
	Subtotal    *int64     `json:"subtotal"`
	Discount    *int64     `json:"discount"`
	LateFee     *int64     `json:"late_fee"`
	Tax         *int64     `json:"tax"`
	TotalAmount *int64     `json:"total_amount"`
	Description *string    `json:"description"`
	Items       *string    `json:"items"`
	Notes       *string    `json:"notes"`
	AdminNotes  *string    `json:"admin_notes"`
}

type MarkPaidRequest struct {
	// PaidAmount nil means pay in full.
	PaidAmount *int64 `json:"paid_amount"`
}

type ListInvoicesRequest struct {
	CustomerID string
	Status     string
	Month      string
	Page       pagination.Pagination
}

type ListInvoicesResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int64     `json:"total"`
}

type Service interface {
	GenerateMonthly(ctx context.Context, req GenerateInvoiceRequest) (Invoice, error)
	GenerateBatch(ctx context.Context, month string) (BatchReport, error)
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)
	MarkPaid(ctx context.Context, id string, req MarkPaidRequest) (Invoice, error)
	// SweepOverdue marks every pending/partial invoice past its due date as
	// overdue and applies the late fee once. Idempotent.
	SweepOverdue(ctx context.Context) ([]Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) (ListInvoicesResponse, error)
	ListOverdue(ctx context.Context, page pagination.Pagination) ([]Invoice, error)
	Count(ctx context.Context) (CountSummary, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	GetByNumber(ctx context.Context, number string) (Invoice, error)
	// ApplyPayment adds amount to the invoice balance inside the caller's
	// transaction and re-derives status the same way MarkPaid does.
	ApplyPayment(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, amount int64) (Invoice, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidMonth     = errors.New("invalid_month")
	ErrInvalidNumber    = errors.New("invalid_number")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrNotFound         = errors.New("not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrNoPackage        = errors.New("customer_has_no_package")
	ErrPeriodExists     = errors.New("billing_period_already_invoiced")
	ErrAlreadyPaid      = errors.New("invoice_already_paid")
	ErrHasPayment       = errors.New("invoice_has_payment")
)
