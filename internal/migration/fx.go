package migration

import (
	"strings"

	authdomain "github.com/smallbiznis/netbill/internal/auth/domain"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"github.com/smallbiznis/netbill/internal/seed"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// Versioned migrations target postgres. Other dialects (sqlite for
		// local development) fall back to the model schema.
		if strings.EqualFold(cfg.DBType, "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&catalogdomain.Package{},
				&customerdomain.Customer{},
				&invoicedomain.Invoice{},
				&paymentdomain.Payment{},
				&seqdomain.Sequence{},
			); err != nil {
				return err
			}
		}

		if cfg.BootstrapAdmin {
			return seed.EnsureAdmin(conn, cfg)
		}
		return nil
	}),
)
