package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusSuspended  Status = "suspended"
	StatusInactive   Status = "inactive"
	StatusTerminated Status = "terminated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive, StatusTerminated:
		return true
	}
	return false
}

// Customer is a subscriber record. Code is assigned once at creation and
// never changes. IsActive mirrors Status: active means true, suspended and
// terminated mean false. Customers are never hard-deleted; deletion is a
// transition to terminated.
type Customer struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Code string       `gorm:"not null;uniqueIndex" json:"customer_code"`

	FullName     string `gorm:"not null" json:"full_name"`
	Email        string `gorm:"index" json:"email,omitempty"`
	Phone        string `gorm:"not null" json:"phone"`
	IDCardNumber string `json:"id_card_number,omitempty"`

	Address    string `gorm:"not null" json:"address"`
	City       string `gorm:"not null" json:"city"`
	Province   string `gorm:"not null" json:"province"`
	PostalCode string `json:"postal_code,omitempty"`

	InstallationAddress string `json:"installation_address,omitempty"`
	InstallationNotes   string `json:"installation_notes,omitempty"`

	PackageID *snowflake.ID `gorm:"index" json:"package_id,omitempty"`

	IPAddress      string `json:"ip_address,omitempty"`
	RouterUsername string `json:"router_username,omitempty"`
	RouterPassword string `json:"-"`

	Status   Status `gorm:"not null;default:active" json:"status"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	BillingDay  int  `gorm:"not null;default:1" json:"billing_day"`
	AutoPayment bool `gorm:"not null;default:false" json:"auto_payment"`

	InstallationDate *time.Time `json:"installation_date,omitempty"`
	ActivationDate   *time.Time `json:"activation_date,omitempty"`
	TerminationDate  *time.Time `json:"termination_date,omitempty"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// StatusCount is the per-status breakdown returned by Count.
type StatusCount struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Suspended  int64 `json:"suspended"`
	Inactive   int64 `json:"inactive"`
	Terminated int64 `json:"terminated"`
}
