package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusVerified  Status = "verified"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the payment can no longer change.
func (s Status) Terminal() bool {
	return s != StatusPending
}

type Method string

const (
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodEWallet      Method = "e_wallet"
	MethodCreditCard   Method = "credit_card"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodEWallet, MethodCreditCard:
		return true
	}
	return false
}

// Payment is a customer remittance awaiting manual verification. A payment
// optionally targets one invoice; verification applies the amount to that
// invoice inside the same transaction. Once verified a payment is immutable.
type Payment struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	Number string       `gorm:"column:payment_number;not null;uniqueIndex" json:"payment_number"`

	CustomerID snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	InvoiceID  *snowflake.ID `gorm:"index" json:"invoice_id,omitempty"`

	PaymentDate time.Time `gorm:"not null" json:"payment_date"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Method      Method    `gorm:"column:payment_method;not null" json:"payment_method"`

	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`

	ReferenceNumber string `json:"reference_number,omitempty"`
	ReceiptImage    string `json:"receipt_image,omitempty"`

	Status Status `gorm:"not null;default:pending;index" json:"status"`

	VerifiedBy *snowflake.ID `json:"verified_by,omitempty"`
	VerifiedAt *time.Time    `json:"verified_at,omitempty"`

	Notes           string `json:"notes,omitempty"`
	AdminNotes      string `json:"admin_notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// StatusCount is the per-status breakdown returned by Count.
type StatusCount struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Verified  int64 `json:"verified"`
	Rejected  int64 `json:"rejected"`
	Cancelled int64 `json:"cancelled"`

	VerifiedAmount int64 `json:"verified_amount"`
}
