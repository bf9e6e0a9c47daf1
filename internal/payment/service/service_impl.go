package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/payment/domain"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
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
	Repo      domain.Repository
	Customers customerdomain.Repository
	Invoices  invoicedomain.Repository
	Ledger    invoicedomain.Service
	Sequence  seqdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Repository
	invoices  invoicedomain.Repository
	ledger    invoicedomain.Service
	sequence  seqdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		invoices:  p.Invoices,
		ledger:    p.Ledger,
		sequence:  p.Sequence,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentRequest) (domain.Payment, error) {
	customerID, err := parseID(req.CustomerID)
	if err != nil {
		return domain.Payment{}, err
	}
	if req.Amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}
	if !req.Method.Valid() {
		return domain.Payment{}, domain.ErrInvalidMethod
	}

	customer, err := s.customers.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Payment{}, err
	}
	if customer == nil {
		return domain.Payment{}, domain.ErrCustomerNotFound
	}

	var invoiceID *snowflake.ID
	if strings.TrimSpace(req.InvoiceID) != "" {
		id, err := parseID(req.InvoiceID)
		if err != nil {
			return domain.Payment{}, err
		}
		invoice, err := s.invoices.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.Payment{}, err
		}
		if invoice == nil {
			return domain.Payment{}, domain.ErrInvoiceNotFound
		}
		if invoice.CustomerID != customerID {
			return domain.Payment{}, domain.ErrInvoiceMismatch
		}
		invoiceID = &id
	}

	now := s.clock.Now()
	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	payment := domain.Payment{
		ID:              s.genID.Generate(),
		CustomerID:      customerID,
		InvoiceID:       invoiceID,
		PaymentDate:     paymentDate,
		Amount:          req.Amount,
		Method:          req.Method,
		BankName:        strings.TrimSpace(req.BankName),
		AccountNumber:   strings.TrimSpace(req.AccountNumber),
		AccountName:     strings.TrimSpace(req.AccountName),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		ReceiptImage:    strings.TrimSpace(req.ReceiptImage),
		Status:          domain.StatusPending,
		Notes:           strings.TrimSpace(req.Notes),
		AdminNotes:      strings.TrimSpace(req.AdminNotes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.sequence.NextPaymentNumber(ctx, tx, paymentDate)
		if err != nil {
			return err
		}
		payment.Number = number
		return s.repo.Insert(ctx, tx, &payment)
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment created",
		zap.String("payment_number", payment.Number),
		zap.String("customer_code", customer.Code),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdatePaymentRequest) (domain.Payment, error) {
	payment, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status.Terminal() {
		return domain.Payment{}, terminalErr(payment.Status)
	}

	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return domain.Payment{}, domain.ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		if !req.Method.Valid() {
			return domain.Payment{}, domain.ErrInvalidMethod
		}
		payment.Method = *req.Method
	}
	if req.BankName != nil {
		payment.BankName = strings.TrimSpace(*req.BankName)
	}
	if req.AccountNumber != nil {
		payment.AccountNumber = strings.TrimSpace(*req.AccountNumber)
	}
	if req.AccountName != nil {
		payment.AccountName = strings.TrimSpace(*req.AccountName)
	}
	if req.ReferenceNumber != nil {
		payment.ReferenceNumber = strings.TrimSpace(*req.ReferenceNumber)
	}
	if req.ReceiptImage != nil {
		payment.ReceiptImage = strings.TrimSpace(*req.ReceiptImage)
	}
	if req.Notes != nil {
		payment.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.AdminNotes != nil {
		payment.AdminNotes = strings.TrimSpace(*req.AdminNotes)
	}

	payment.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPaymentsRequest) (domain.ListPaymentsResponse, error) {
	var filter domain.ListPaymentFilter
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListPaymentsResponse{}, err
		}
		filter.CustomerID = id
	}
	if raw := strings.TrimSpace(req.InvoiceID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return domain.ListPaymentsResponse{}, err
		}
		filter.InvoiceID = id
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.ListPaymentsResponse{}, domain.ErrInvalidID
		}
		filter.Status = parsed
	}
	if method := strings.TrimSpace(req.Method); method != "" {
		parsed := domain.Method(method)
		if !parsed.Valid() {
			return domain.ListPaymentsResponse{}, domain.ErrInvalidMethod
		}
		filter.Method = parsed
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Page)
	if err != nil {
		return domain.ListPaymentsResponse{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListPaymentsResponse{}, err
	}

	payments := make([]domain.Payment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		payments = append(payments, *item)
	}
	return domain.ListPaymentsResponse{Payments: payments, Total: total}, nil
}

func (s *Service) Count(ctx context.Context) (domain.StatusCount, error) {
	return s.repo.CountByStatus(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Payment, error) {
	payment, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	return *payment, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (domain.Payment, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Payment{}, domain.ErrInvalidNumber
	}

	payment, err := s.repo.FindByNumber(ctx, s.db, number)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment == nil {
		return domain.Payment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) Verify(ctx context.Context, id string, verifiedBy string) (domain.Payment, error) {
	payment, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status.Terminal() {
		return domain.Payment{}, terminalErr(payment.Status)
	}

	verifier, err := parseID(verifiedBy)
	if err != nil {
		return domain.Payment{}, err
	}

	now := s.clock.Now()
	payment.Status = domain.StatusVerified
	payment.VerifiedBy = &verifier
	payment.VerifiedAt = &now
	payment.UpdatedAt = now

	// The payment flip and the invoice balance update commit together or
	// not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		if payment.InvoiceID != nil {
			if _, err := s.ledger.ApplyPayment(ctx, tx, *payment.InvoiceID, payment.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment verified",
		zap.String("payment_number", payment.Number),
		zap.Int64("amount", payment.Amount),
		zap.String("verified_by", verifier.String()),
	)
	return *payment, nil
}

func (s *Service) Reject(ctx context.Context, id string, verifiedBy string, reason string) (domain.Payment, error) {
	payment, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status.Terminal() {
		return domain.Payment{}, terminalErr(payment.Status)
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Payment{}, domain.ErrInvalidReason
	}
	verifier, err := parseID(verifiedBy)
	if err != nil {
		return domain.Payment{}, err
	}

	now := s.clock.Now()
	payment.Status = domain.StatusRejected
	payment.VerifiedBy = &verifier
	payment.VerifiedAt = &now
	payment.RejectionReason = reason
	payment.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment rejected",
		zap.String("payment_number", payment.Number),
		zap.String("verified_by", verifier.String()),
	)
	return *payment, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Payment, error) {
	payment, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Payment{}, err
	}
	if payment.Status.Terminal() {
		return domain.Payment{}, terminalErr(payment.Status)
	}

	payment.Status = domain.StatusCancelled
	payment.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, payment); err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment cancelled", zap.String("payment_number", payment.Number))
	return *payment, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Payment, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, domain.ErrNotFound
	}
	return payment, nil
}

func terminalErr(status domain.Status) error {
	if status == domain.StatusVerified {
		return domain.ErrAlreadyVerified
	}
	return domain.ErrAlreadyFinal
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
