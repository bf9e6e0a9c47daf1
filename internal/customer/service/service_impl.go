package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/customer/domain"
	seqdomain "github.com/smallbiznis/netbill/internal/sequence/domain"
	"github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Billing  *config.BillingConfigHolder
	Repo     domain.Repository
	Packages catalogdomain.Repository
	Sequence seqdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	billing  *config.BillingConfigHolder
	repo     domain.Repository
	packages catalogdomain.Repository
	sequence seqdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		billing:  p.Billing,
		repo:     p.Repo,
		packages: p.Packages,
		sequence: p.Sequence,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return domain.Customer{}, domain.ErrInvalidPhone
	}
	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Province) == "" {
		return domain.Customer{}, domain.ErrInvalidAddress
	}

	email := strings.TrimSpace(req.Email)
	if email != "" {
		if !strings.Contains(email, "@") {
			return domain.Customer{}, domain.ErrInvalidEmail
		}
		existing, err := s.repo.FindByEmail(ctx, s.db, email)
		if err != nil {
			return domain.Customer{}, err
		}
		if existing != nil {
			return domain.Customer{}, domain.ErrEmailExists
		}
	}

	var packageID *snowflake.ID
	if strings.TrimSpace(req.PackageID) != "" {
		id, err := s.resolvePackage(ctx, req.PackageID)
		if err != nil {
			return domain.Customer{}, err
		}
		packageID = &id
	}

	billingDay := req.BillingDay
	if billingDay == 0 {
		billingDay = s.billing.Get().DefaultBillingDay
	}
	if billingDay < 1 || billingDay > 28 {
		return domain.Customer{}, domain.ErrInvalidBillingDay
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:                  s.genID.Generate(),
		FullName:            name,
		Email:               email,
		Phone:               phone,
		IDCardNumber:        strings.TrimSpace(req.IDCardNumber),
		Address:             strings.TrimSpace(req.Address),
		City:                strings.TrimSpace(req.City),
		Province:            strings.TrimSpace(req.Province),
		PostalCode:          strings.TrimSpace(req.PostalCode),
		InstallationAddress: strings.TrimSpace(req.InstallationAddress),
		InstallationNotes:   strings.TrimSpace(req.InstallationNotes),
		PackageID:           packageID,
		IPAddress:           strings.TrimSpace(req.IPAddress),
		RouterUsername:      strings.TrimSpace(req.RouterUsername),
		RouterPassword:      req.RouterPassword,
		Status:              domain.StatusActive,
		IsActive:            true,
		BillingDay:          billingDay,
		AutoPayment:         req.AutoPayment,
		InstallationDate:    req.InstallationDate,
		ActivationDate:      &now,
		Notes:               strings.TrimSpace(req.Notes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := s.sequence.NextCustomerCode(ctx, tx)
		if err != nil {
			return err
		}
		customer.Code = code
		return s.repo.Insert(ctx, tx, &customer)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrEmailExists
		}
		return domain.Customer{}, err
	}

	s.log.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("customer_code", customer.Code),
	)
	return customer, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return domain.Customer{}, domain.ErrInvalidName
		}
		customer.FullName = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != "" && !strings.Contains(email, "@") {
			return domain.Customer{}, domain.ErrInvalidEmail
		}
		if email != "" && email != customer.Email {
			existing, err := s.repo.FindByEmail(ctx, s.db, email)
			if err != nil {
				return domain.Customer{}, err
			}
			if existing != nil && existing.ID != customer.ID {
				return domain.Customer{}, domain.ErrEmailExists
			}
		}
		customer.Email = email
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		if phone == "" {
			return domain.Customer{}, domain.ErrInvalidPhone
		}
		customer.Phone = phone
	}
	if req.IDCardNumber != nil {
		customer.IDCardNumber = strings.TrimSpace(*req.IDCardNumber)
	}
	if req.Address != nil {
		customer.Address = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		customer.City = strings.TrimSpace(*req.City)
	}
	if req.Province != nil {
		customer.Province = strings.TrimSpace(*req.Province)
	}
	if req.PostalCode != nil {
		customer.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if req.InstallationAddress != nil {
		customer.InstallationAddress = strings.TrimSpace(*req.InstallationAddress)
	}
	if req.InstallationNotes != nil {
		customer.InstallationNotes = strings.TrimSpace(*req.InstallationNotes)
	}
	if req.PackageID != nil {
		if strings.TrimSpace(*req.PackageID) == "" {
			customer.PackageID = nil
		} else {
			pkgID, err := s.resolvePackage(ctx, *req.PackageID)
			if err != nil {
				return domain.Customer{}, err
			}
			customer.PackageID = &pkgID
		}
	}
	if req.IPAddress != nil {
		customer.IPAddress = strings.TrimSpace(*req.IPAddress)
	}
	if req.RouterUsername != nil {
		customer.RouterUsername = strings.TrimSpace(*req.RouterUsername)
	}
	if req.RouterPassword != nil {
		customer.RouterPassword = *req.RouterPassword
	}
	if req.BillingDay != nil {
		if *req.BillingDay < 1 || *req.BillingDay > 28 {
			return domain.Customer{}, domain.ErrInvalidBillingDay
		}
		customer.BillingDay = *req.BillingDay
	}
	if req.AutoPayment != nil {
		customer.AutoPayment = *req.AutoPayment
	}
	if req.InstallationDate != nil {
		customer.InstallationDate = req.InstallationDate
	}
	if req.Notes != nil {
		customer.Notes = strings.TrimSpace(*req.Notes)
	}

	customer.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrEmailExists
		}
		return domain.Customer{}, err
	}

	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomersRequest) (domain.ListCustomersResponse, error) {
	filter := domain.ListCustomerFilter{
		Search: strings.TrimSpace(req.Search),
		City:   strings.TrimSpace(req.City),
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := domain.Status(status)
		if !parsed.Valid() {
			return domain.ListCustomersResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = parsed
	}
	if raw := strings.TrimSpace(req.PackageID); raw != "" {
		pkgID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListCustomersResponse{}, domain.ErrInvalidID
		}
		filter.PackageID = pkgID
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Page)
	if err != nil {
		return domain.ListCustomersResponse{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListCustomersResponse{}, err
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomersResponse{Customers: customers, Total: total}, nil
}

func (s *Service) Count(ctx context.Context) (domain.StatusCount, error) {
	return s.repo.CountByStatus(ctx, s.db)
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) Suspend(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	customer.Status = domain.StatusSuspended
	customer.IsActive = false
	customer.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer suspended", zap.String("customer_code", customer.Code))
	return *customer, nil
}

func (s *Service) Activate(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now()
	customer.Status = domain.StatusActive
	customer.IsActive = true
	if customer.ActivationDate == nil {
		customer.ActivationDate = &now
	}
	customer.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	s.log.Info("customer activated", zap.String("customer_code", customer.Code))
	return *customer, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customer, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	customer.Status = domain.StatusTerminated
	customer.IsActive = false
	customer.TerminationDate = &now
	customer.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, customer); err != nil {
		return err
	}

	s.log.Info("customer terminated", zap.String("customer_code", customer.Code))
	return nil
}

func (s *Service) resolvePackage(ctx context.Context, raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}

	pkg, err := s.packages.FindByID(ctx, s.db, id)
	if err != nil {
		return 0, err
	}
	if pkg == nil {
		return 0, domain.ErrPackageNotFound
	}
	return id, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Customer, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvalidID
	}

	customer, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrNotFound
	}
	return customer, nil
}
