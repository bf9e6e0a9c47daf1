package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
)

// User is a back-office operator account.
type User struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Email          string       `gorm:"not null;uniqueIndex" json:"email"`
	Username       string       `gorm:"not null;uniqueIndex" json:"username"`
	FullName       string       `gorm:"not null" json:"full_name"`
	HashedPassword string       `gorm:"not null" json:"-"`

	IsActive    bool `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser bool `gorm:"not null;default:false" json:"is_superuser"`

	Role  Role   `gorm:"not null;default:staff" json:"role"`
	Phone string `json:"phone,omitempty"`

	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
