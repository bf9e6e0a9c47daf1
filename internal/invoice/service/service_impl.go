package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/invoice/domain"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/smallbiznis/netbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Billing   *config.BillingConfigHolder
	Repo      domain.Repository
	Customers customerdomain.Repository
	Packages  catalogdomain.Repository
	Sequence  seqdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	billing   *config.BillingConfigHolder
	repo      domain.Repository
	customers customerdomain.Repository
	packages  catalogdomain.Repository
	sequence  seqdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		billing:   p.Billing,
		repo:      p.Repo,
		customers: p.Customers,
		packages:  p.Packages,
		sequence:  p.Sequence,
	}
}

func (s *Service) GenerateMonthly(ctx context.Context, req domain.GenerateInvoiceRequest) (domain.Invoice, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		return domain.Invoice{}, err
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrCustomerNotFound
	}

	return s.generateFor(ctx, customer, month)
}

func (s *Service) GenerateBatch(ctx context.Context, month string) (domain.BatchReport, error) {
	parsed, err := parseMonth(month)
	if err != nil {
		return domain.BatchReport{}, err
	}

	customers, err := s.customers.ListActiveWithPackage(ctx, s.db)
	if err != nil {
		return domain.BatchReport{}, err
	}

	report := domain.BatchReport{Month: parsed.Format("2006-01")}
	for _, customer := range customers {
		_, err := s.generateFor(ctx, customer, parsed)
		switch {
		case err == nil:
			report.Generated++
		case err == domain.ErrPeriodExists:
			report.Skipped++
		default:
			report.Failed++
			report.Failures = append(report.Failures, domain.BatchFailure{
				CustomerCode: customer.Code,
				Reason:       err.Error(),
			})
			s.log.Warn("batch invoice generation failed for customer",
				zap.String("customer_code", customer.Code),
				zap.Error(err),
			)
		}
	}

	s.log.Info("batch invoice generation finished",
		zap.String("month", report.Month),
		zap.Int("generated", report.Generated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) generateFor(ctx context.Context, customer *customerdomain.Customer, month time.Time) (domain.Invoice, error) {
	if customer.PackageID == nil {
		return domain.Invoice{}, domain.ErrNoPackage
	}
	pkg, err := s.packages.FindByID(ctx, s.db, *customer.PackageID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if pkg == nil {
		return domain.Invoice{}, domain.ErrNoPackage
	}

	period := month.Format("2006-01")
	existing, err := s.repo.FindByPeriod(ctx, s.db, customer.ID, period)
	if err != nil {
		return domain.Invoice{}, err
	}
	if existing != nil {
		return domain.Invoice{}, domain.ErrPeriodExists
	}

	cfg := s.billing.Get()
	invoiceDate := time.Date(month.Year(), month.Month(), customer.BillingDay, 0, 0, 0, 0, time.UTC)
	periodStart := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)
	dueDate := invoiceDate.AddDate(0, 0, cfg.GraceDays)

	items, _ := json.Marshal(map[string]any{
		"package": pkg.Name,
		"price":   pkg.Price,
	})

	now := s.clock.Now()
	invoice := domain.Invoice{
		ID:            s.genID.Generate(),
		CustomerID:    customer.ID,
		BillingPeriod: period,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Subtotal:      pkg.Price,
		Status:        domain.StatusPending,
		Description:   "Internet Service - " + pkg.Name,
		Items:         string(items),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.TotalAmount = invoice.DeriveTotal()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequence.NextInvoiceNumber(ctx, tx, invoiceDate)
		if err != nil {
			return err
		}
		invoice.Number = number
		return s.repo.Insert(ctx, tx, &invoice)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Concurrent generation for the same period committed first.
			return domain.Invoice{}, domain.ErrPeriodExists
		}
		return domain.Invoice{}, err
	}

	s.log.Info("invoice generated",
		zap.String("invoice_number", invoice.Number),
		zap.String("customer_code", customer.Code),
		zap.String("billing_period", period),
		zap.Int64("total_amount", invoice.TotalAmount),
	)
	return invoice, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrCustomerNotFound
	}

	if req.Subtotal < 0 || req.Discount < 0 || req.LateFee < 0 || req.Tax < 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.BillingPeriod) == "" {
		return domain.Invoice{}, domain.ErrInvalidMonth
	}

	now := s.clock.Now()
	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = now
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = invoiceDate.AddDate(0, 0, s.billing.Get().GraceDays)
	}

	invoice := domain.Invoice{
		ID:            s.genID.Generate(),
		CustomerID:    customerID,
		BillingPeriod: strings.TrimSpace(req.BillingPeriod),
		PeriodStart:   req.PeriodStart,
		PeriodEnd:     req.PeriodEnd,
		InvoiceDate:   invoiceDate,
		DueDate:       dueDate,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		LateFee:       req.LateFee,
		Tax:           req.Tax,
		Status:        domain.StatusPending,
		Description:   strings.TrimSpace(req.Description),
		Items:         req.Items,
		Notes:         strings.TrimSpace(req.Notes),
		AdminNotes:    strings.TrimSpace(req.AdminNotes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	invoice.TotalAmount = invoice.DeriveTotal()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequence.NextInvoiceNumber(ctx, tx, invoiceDate)
		if err != nil {
			return err
		}
		invoice.Number = number
		return s.repo.Insert(ctx, tx, &invoice)
	})
	if err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_number", invoice.Number),
		zap.String("customer_code", customer.Code),
	)
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	invoice, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status == domain.StatusPaid {
		return domain.Invoice{}, domain.ErrAlreadyPaid
	}

	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if req.Subtotal != nil {
		invoice.Subtotal = *req.Subtotal
	}
	if req.Discount != nil {
		invoice.Discount = *req.Discount
	}
	if req.LateFee != nil {
		invoice.LateFee = *req.LateFee
	}
	if req.Tax != nil {
		invoice.Tax = *req.Tax
	}
	if req.TotalAmount != nil {
		invoice.TotalAmount = *req.TotalAmount
	}
	if req.Description != nil {
		invoice.Description = strings.TrimSpace(*req.Description)
	}
	if req.Items != nil {
		invoice.Items = *req.Items
	}
	if req.Notes != nil {
		invoice.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.AdminNotes != nil {
		invoice.AdminNotes = strings.TrimSpace(*req.AdminNotes)
	}

	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status == domain.StatusPaid {
		return domain.Invoice{}, domain.ErrAlreadyPaid
	}
	if invoice.PaidAmount > 0 {
		return domain.Invoice{}, domain.ErrHasPayment
	}

	invoice.Status = domain.StatusCancelled
	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice cancelled", zap.String("invoice_number", invoice.Number))
	return *invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string, req domain.MarkPaidRequest) (domain.Invoice, error) {
	invoice, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}

	if req.PaidAmount != nil {
		if *req.PaidAmount < 0 {
			return domain.Invoice{}, domain.ErrInvalidAmount
		}
		invoice.PaidAmount = *req.PaidAmount
	} else {
		invoice.PaidAmount = invoice.TotalAmount
	}

	// An explicit zero leaves the status untouched.
	now := s.clock.Now()
	s.deriveStatus(invoice, now)

	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice marked paid",
		zap.String("invoice_number", invoice.Number),
		zap.Int64("paid_amount", invoice.PaidAmount),
		zap.String("status", string(invoice.Status)),
	)
	return *invoice, nil
}

func (s *Service) SweepOverdue(ctx context.Context) ([]domain.Invoice, error) {
	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cfg := s.billing.Get()

	var swept []domain.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		due, err := s.repo.ListDueBefore(ctx, tx, today)
		if err != nil {
			return err
		}
		for _, invoice := range due {
			invoice.Status = domain.StatusOverdue
			if invoice.LateFee == 0 {
				invoice.LateFee = cfg.LateFee
				invoice.TotalAmount = invoice.DeriveTotal()
			}
			invoice.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, invoice); err != nil {
				return err
			}
			swept = append(swept, *invoice)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(swept) > 0 {
		s.log.Info("overdue sweep applied", zap.Int("invoices", len(swept)))
	}
	return swept, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoicesRequest) (domain.ListInvoicesResponse, error) {
	filter := domain.ListInvoiceFilter{
		Month: strings.TrimSpace(req.Month),
	}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListInvoicesResponse{}, err
		}
		filter.CustomerID = id
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.ListInvoicesResponse{}, domain.ErrInvalidID
		}
		filter.Status = parsed
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Page)
	if err != nil {
		return domain.ListInvoicesResponse{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListInvoicesResponse{}, err
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return domain.ListInvoicesResponse{Invoices: invoices, Total: total}, nil
}

func (s *Service) ListOverdue(ctx context.Context, page pagination.Pagination) ([]domain.Invoice, error) {
	items, err := s.repo.ListOverdue(ctx, s.db, page)
	if err != nil {
		return nil, err
	}
	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}
	return invoices, nil
}

func (s *Service) Count(ctx context.Context) (domain.CountSummary, error) {
	return s.repo.CountSummary(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoice, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Invoice{}, domain.ErrInvalidNumber
	}

	invoice, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) ApplyPayment(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID, amount int64) (domain.Invoice, error) {
	if amount <= 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}

	invoice, err := s.repo.FindByID(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	invoice.PaidAmount += amount
	s.deriveStatus(invoice, now)

	invoice.UpdatedAt = now
	if err := s.repo.Update(ctx, tx, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// deriveStatus applies the paid-amount derivation rule: at or above the
// total the invoice is paid, above zero it is partial, and zero leaves the
// previous status in place.
func (s *Service) deriveStatus(invoice *domain.Invoice, now time.Time) {
	switch {
	case invoice.PaidAmount >= invoice.TotalAmount:
		invoice.Status = domain.StatusPaid
		invoice.PaidAt = &now
	case invoice.PaidAmount > 0:
		invoice.Status = domain.StatusPartial
	}
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Invoice, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func parseMonth(value string) (time.Time, error) {
	month, err := time.Parse("2006-01", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, domain.ErrInvalidMonth
	}
	return month, nil
}
