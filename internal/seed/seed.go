package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/netbill/internal/auth/domain"
	"github.com/smallbiznis/netbill/internal/config"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdmin seeds the bootstrap superuser for a fresh install. Nothing is
// written when the account already exists or when no password is configured.
func EnsureAdmin(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:             node.Generate(),
			Email:          email,
			Username:       usernameFromEmail(email),
			FullName:       cfg.AdminName,
			HashedPassword: string(hashed),
			IsActive:       true,
			IsSuperuser:    true,
			Role:           authdomain.RoleAdmin,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
