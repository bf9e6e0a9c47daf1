package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler requires db, logger, clock, billing config and invoice service")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Billing    *config.BillingConfigHolder
	InvoiceSvc invoicedomain.Service
	Config     Config `optional:"true"`
}

// Scheduler drives the recurring billing jobs: the monthly invoice batch on
// the configured cycle day and the daily overdue sweep.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	billing    *config.BillingConfigHolder
	invoiceSvc invoicedomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.Billing == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        cfg,
		clock:      p.Clock,
		billing:    p.Billing,
		invoiceSvc: p.InvoiceSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	log.Info("job started")

	err := fn(ctx)
	duration := time.Since(start)
	if err == nil {
		log.Info("job finished", zap.Duration("duration", duration))
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	log.Error("job failed", zap.Duration("duration", duration), zap.Error(err))
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{"invoice_generate", s.isJobEnabled("invoice_generate"), func(ctx context.Context) error {
			return s.runJob(ctx, "invoice_generate", s.GenerateInvoicesJob)
		}},
		{"overdue_sweep", s.isJobEnabled("overdue_sweep"), func(ctx context.Context) error {
			return s.runJob(ctx, "overdue_sweep", s.SweepOverdueJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs means all jobs run (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// GenerateInvoicesJob runs the monthly batch once the cycle day has been
// reached. Generation skips customers already invoiced for the month, so
// re-running within the same month is safe.
func (s *Scheduler) GenerateInvoicesJob(ctx context.Context) error {
	now := s.clock.Now()
	if now.Day() < s.billing.Get().CycleDay {
		return nil
	}

	month := now.Format("2006-01")
	report, err := s.invoiceSvc.GenerateBatch(ctx, month)
	if err != nil {
		return err
	}

	if report.Generated > 0 || len(report.Failures) > 0 {
		s.log.Info("invoice batch completed",
			zap.String("month", report.Month),
			zap.Int("generated", report.Generated),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
		)
	}
	for _, failure := range report.Failures {
		s.log.Warn("invoice generation failed",
			zap.String("month", report.Month),
			zap.String("customer_code", failure.CustomerCode),
			zap.String("reason", failure.Reason),
		)
	}
	return nil
}

// SweepOverdueJob flags pending and partial invoices past their due date.
// The sweep applies the late fee at most once per invoice.
func (s *Scheduler) SweepOverdueJob(ctx context.Context) error {
	swept, err := s.invoiceSvc.SweepOverdue(ctx)
	if err != nil {
		return err
	}
	if len(swept) > 0 {
		s.log.Info("overdue sweep completed", zap.Int("marked_overdue", len(swept)))
	}
	return nil
}
