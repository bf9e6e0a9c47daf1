package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPartial   Status = "partial"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
// Overdue is not terminal: payments can still move an overdue invoice to
// partial or paid.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Invoice is one billing document. Monetary fields are minor currency units
// and must satisfy total = subtotal - discount + late_fee + tax immediately
// after generation. Exactly one invoice may exist per (customer,
// billing_period); manual creation deliberately bypasses that check.
type Invoice struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	Number string       `gorm:"column:invoice_number;not null;uniqueIndex" json:"invoice_number"`

	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`

	BillingPeriod string    `gorm:"not null" json:"billing_period"` // YYYY-MM
	PeriodStart   time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd     time.Time `gorm:"not null" json:"period_end"`

	InvoiceDate time.Time `gorm:"not null" json:"invoice_date"`
	DueDate     time.Time `gorm:"not null;index" json:"due_date"`

	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	Discount    int64 `gorm:"not null;default:0" json:"discount"`
	LateFee     int64 `gorm:"not null;default:0" json:"late_fee"`
	Tax         int64 `gorm:"not null;default:0" json:"tax"`
	TotalAmount int64 `gorm:"not null" json:"total_amount"`
	PaidAmount  int64 `gorm:"not null;default:0" json:"paid_amount"`

	Status Status     `gorm:"not null;default:pending;index" json:"status"`
	PaidAt *time.Time `json:"paid_at,omitempty"`

	Description string `json:"description,omitempty"`
	Items       string `json:"items,omitempty"`
	Notes       string `json:"notes,omitempty"`
	AdminNotes  string `json:"admin_notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// RemainingAmount is the unpaid balance.
func (i Invoice) RemainingAmount() int64 {
	return i.TotalAmount - i.PaidAmount
}

// DeriveTotal recomputes the total from its parts.
func (i Invoice) DeriveTotal() int64 {
	return i.Subtotal - i.Discount + i.LateFee + i.Tax
}

// CountSummary aggregates invoice counts and balances.
type CountSummary struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Partial   int64 `json:"partial"`
	Paid      int64 `json:"paid"`
	Overdue   int64 `json:"overdue"`
	Cancelled int64 `json:"cancelled"`

	OutstandingAmount int64 `json:"outstanding_amount"`
	PaidAmount        int64 `json:"paid_amount"`
}

// BatchReport is the aggregate outcome of batch generation. Each customer's
// failure is isolated; the batch never aborts part-way.
type BatchReport struct {
	Month     string         `json:"month"`
	Generated int            `json:"generated"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

type BatchFailure struct {
	CustomerCode string `json:"customer_code"`
	Reason       string `json:"reason"`
}
