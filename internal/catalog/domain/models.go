package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PackageType string

const (
	TypeResidential PackageType = "residential"
	TypeBusiness    PackageType = "business"
	TypeCorporate   PackageType = "corporate"
)

func (t PackageType) Valid() bool {
	switch t {
	case TypeResidential, TypeBusiness, TypeCorporate:
		return true
	}
	return false
}

// Package is a subscribable internet service plan. Prices are stored in
// minor currency units. QuotaGB of zero means unlimited.
type Package struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"not null;uniqueIndex" json:"name"`
	Code            string       `gorm:"not null;uniqueIndex" json:"code"`
	Description     string       `json:"description,omitempty"`
	DownloadSpeed   int          `gorm:"not null" json:"download_speed"`
	UploadSpeed     int          `gorm:"not null" json:"upload_speed"`
	Price           int64        `gorm:"not null" json:"price"`
	InstallationFee int64        `gorm:"not null;default:0" json:"installation_fee"`
	QuotaGB         int          `gorm:"not null;default:0" json:"quota_gb"`
	IsActive        bool         `gorm:"not null;default:true" json:"is_active"`
	IsFeatured      bool         `gorm:"not null;default:false" json:"is_featured"`
	SortOrder       int          `gorm:"not null;default:0" json:"sort_order"`
	Type            PackageType  `gorm:"column:package_type;not null;default:residential" json:"package_type"`
	Features        string       `json:"features,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updated_at"`
}

func (Package) TableName() string {
	return "packages"
}
