package service

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/netbill/internal/sequence/domain"
	"github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("sequence.service"),
		repo: p.Repo,
	}
}

func (s *Service) NextCustomerCode(ctx context.Context, tx *gorm.DB) (string, error) {
	n, err := s.next(ctx, tx, "customer_code", "customers", "code", "CUST-")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CUST-%04d", n), nil
}

func (s *Service) NextInvoiceNumber(ctx context.Context, tx *gorm.DB, period time.Time) (string, error) {
	month := period.Format("2006-01")
	prefix := fmt.Sprintf("INV-%s-", month)
	n, err := s.next(ctx, tx, "invoice_number:"+month, "invoices", "invoice_number", prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, n), nil
}

func (s *Service) NextPaymentNumber(ctx context.Context, tx *gorm.DB, period time.Time) (string, error) {
	month := period.Format("2006-01")
	prefix := fmt.Sprintf("PAY-%s-", month)
	n, err := s.next(ctx, tx, "payment_number:"+month, "payments", "payment_number", prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, n), nil
}

// next increments the scope counter, creating the row on first use. The seed
// for a new scope is the highest numeric suffix already present in the target
// column, so counters pick up where imported data left off.
func (s *Service) next(ctx context.Context, tx *gorm.DB, scope, table, column, prefix string) (int64, error) {
	value, ok, err := s.repo.Increment(ctx, tx, scope)
	if err != nil {
		return 0, err
	}
	if ok {
		return value, nil
	}

	seed, err := s.repo.MaxNumericSuffix(ctx, tx, table, column, prefix)
	if err != nil {
		return 0, err
	}

	value = seed + 1
	if err := s.repo.Insert(ctx, tx, &domain.Sequence{Scope: scope, Value: value}); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost the race to create the row; the counter exists now.
			value, ok, err = s.repo.Increment(ctx, tx, scope)
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, fmt.Errorf("sequence %s: row vanished after duplicate insert", scope)
			}
			return value, nil
		}
		return 0, err
	}

	s.log.Debug("sequence scope initialized",
		zap.String("scope", scope),
		zap.Int64("seed", seed),
	)
	return value, nil
}
