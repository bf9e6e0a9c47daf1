package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/netbill/pkg/db/pagination"
)

type CreatePaymentRequest struct {
	CustomerID  string    `json:"customer_id"`
	InvoiceID   string    `json:"invoice_id"`
	PaymentDate time.Time `json:"payment_date"`
	Amount      int64     `json:"amount"`
	Method      Method    `json:"payment_method"`

	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`

	ReferenceNumber string `json:"reference_number"`
	ReceiptImage    string `json:"receipt_image"`

	Notes      string `json:"notes"`
	AdminNotes string `json:"admin_notes"`
}

// UpdatePaymentRequest overwrites only supplied fields; forbidden once the
// payment has been verified.
type UpdatePaymentRequest struct {
	PaymentDate *time.Time `json:"payment_date"`
	Amount      *int64     `json:"amount"`
	Method      *Method    `json:"payment_method"`

	BankName      *string `json:"bank_name"`
	AccountNumber *string `json:"account_number"`
	AccountName   *string `json:"account_name"`

	ReferenceNumber *string `json:"reference_number"`
	ReceiptImage    *string `json:"receipt_image"`

	Notes      *string `json:"notes"`
	AdminNotes *string `json:"admin_notes"`
}

type ListPaymentsRequest struct {
	CustomerID string
	InvoiceID  string
	Status     string
	Method     string
	Page       pagination.Pagination
}

type ListPaymentsResponse struct {
	Payments []Payment `json:"payments"`
	Total    int64     `json:"total"`
}

type Service interface {
	Create(ctx context.Context, req CreatePaymentRequest) (Payment, error)
	Update(ctx context.Context, id string, req UpdatePaymentRequest) (Payment, error)
	List(ctx context.Context, req ListPaymentsRequest) (ListPaymentsResponse, error)
	Count(ctx context.Context) (StatusCount, error)
	GetByID(ctx context.Context, id string) (Payment, error)
	GetByNumber(ctx context.Context, number string) (Payment, error)
	// Verify marks the payment verified and, when an invoice is linked,
	// applies the amount to it in the same transaction.
	Verify(ctx context.Context, id string, verifiedBy string) (Payment, error)
	Reject(ctx context.Context, id string, verifiedBy string, reason string) (Payment, error)
	Cancel(ctx context.Context, id string) (Payment, error)
}

var (
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidNumber    = errors.New("invalid_number")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidMethod    = errors.New("invalid_payment_method")
	ErrInvalidReason    = errors.New("invalid_rejection_reason")
	ErrNotFound         = errors.New("not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
	ErrInvoiceMismatch  = errors.New("invoice_customer_mismatch")
	ErrAlreadyVerified  = errors.New("payment_already_verified")
	ErrAlreadyFinal     = errors.New("payment_already_final")
)
