package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePackageRequest) (domain.Package, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Package{}, domain.ErrInvalidName
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Package{}, domain.ErrInvalidCode
	}
	if req.DownloadSpeed <= 0 || req.UploadSpeed <= 0 {
		return domain.Package{}, domain.ErrInvalidSpeed
	}
	if req.Price < 0 || req.InstallationFee < 0 {
		return domain.Package{}, domain.ErrInvalidPrice
	}

	pkgType := req.Type
	if pkgType == "" {
		pkgType = domain.TypeResidential
	}
	if !pkgType.Valid() {
		return domain.Package{}, domain.ErrInvalidType
	}

	if existing, err := s.repo.FindByName(ctx, s.db, name); err != nil {
		return domain.Package{}, err
	} else if existing != nil {
		return domain.Package{}, domain.ErrNameExists
	}
	if existing, err := s.repo.FindByCode(ctx, s.db, code); err != nil {
		return domain.Package{}, err
	} else if existing != nil {
		return domain.Package{}, domain.ErrCodeExists
	}

	now := s.clock.Now()
	pkg := domain.Package{
		ID:              s.genID.Generate(),
		Name:            name,
		Code:            code,
		Description:     strings.TrimSpace(req.Description),
		DownloadSpeed:   req.DownloadSpeed,
		UploadSpeed:     req.UploadSpeed,
		Price:           req.Price,
		InstallationFee: req.InstallationFee,
		QuotaGB:         req.QuotaGB,
		IsActive:        true,
		IsFeatured:      req.IsFeatured,
		SortOrder:       req.SortOrder,
		Type:            pkgType,
		Features:        req.Features,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &pkg); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Package{}, domain.ErrNameExists
		}
		return domain.Package{}, err
	}

	s.log.Info("package created",
		zap.String("package_id", pkg.ID.String()),
		zap.String("code", pkg.Code),
	)
	return pkg, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdatePackageRequest) (domain.Package, error) {
	pkg, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Package{}, domain.ErrInvalidName
		}
		if name != pkg.Name {
			existing, err := s.repo.FindByName(ctx, s.db, name)
			if err != nil {
				return domain.Package{}, err
			}
			if existing != nil {
				return domain.Package{}, domain.ErrNameExists
			}
		}
		pkg.Name = name
	}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return domain.Package{}, domain.ErrInvalidCode
		}
		if code != pkg.Code {
			existing, err := s.repo.FindByCode(ctx, s.db, code)
			if err != nil {
				return domain.Package{}, err
			}
			if existing != nil {
				return domain.Package{}, domain.ErrCodeExists
			}
		}
		pkg.Code = code
	}
	if req.Description != nil {
		pkg.Description = strings.TrimSpace(*req.Description)
	}
	if req.DownloadSpeed != nil {
		if *req.DownloadSpeed <= 0 {
			return domain.Package{}, domain.ErrInvalidSpeed
		}
		pkg.DownloadSpeed = *req.DownloadSpeed
	}
	if req.UploadSpeed != nil {
		if *req.UploadSpeed <= 0 {
			return domain.Package{}, domain.ErrInvalidSpeed
		}
		pkg.UploadSpeed = *req.UploadSpeed
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return domain.Package{}, domain.ErrInvalidPrice
		}
		pkg.Price = *req.Price
	}
	if req.InstallationFee != nil {
		if *req.InstallationFee < 0 {
			return domain.Package{}, domain.ErrInvalidPrice
		}
		pkg.InstallationFee = *req.InstallationFee
	}
	if req.QuotaGB != nil {
		pkg.QuotaGB = *req.QuotaGB
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		pkg.IsFeatured = *req.IsFeatured
	}
	if req.SortOrder != nil {
		pkg.SortOrder = *req.SortOrder
	}
	if req.Type != nil {
		if !req.Type.Valid() {
			return domain.Package{}, domain.ErrInvalidType
		}
		pkg.Type = *req.Type
	}
	if req.Features != nil {
		pkg.Features = *req.Features
	}

	pkg.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, pkg); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Package{}, domain.ErrNameExists
		}
		return domain.Package{}, err
	}

	return *pkg, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPackagesRequest) (domain.ListPackagesResponse, error) {
	filter := domain.ListPackageFilter{
		IsActive: req.IsActive,
		Type:     domain.PackageType(strings.TrimSpace(req.Type)),
	}

	items, err := s.repo.List(ctx, s.db, filter, req.Page)
	if err != nil {
		return domain.ListPackagesResponse{}, err
	}
	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListPackagesResponse{}, err
	}

	packages := make([]domain.Package, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		packages = append(packages, *item)
	}

	return domain.ListPackagesResponse{Packages: packages, Total: total}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Package, error) {
	pkg, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}
	return *pkg, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (domain.Package, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Package{}, domain.ErrInvalidCode
	}

	pkg, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Package{}, err
	}
	if pkg == nil {
		return domain.Package{}, domain.ErrNotFound
	}
	return *pkg, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	pkg, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	subscribers, err := s.repo.CountSubscribers(ctx, s.db, pkg.ID)
	if err != nil {
		return err
	}
	if subscribers > 0 {
		return domain.ErrInUse
	}

	if err := s.repo.Delete(ctx, s.db, pkg.ID); err != nil {
		return err
	}

	s.log.Info("package deleted",
		zap.String("package_id", pkg.ID.String()),
		zap.String("code", pkg.Code),
	)
	return nil
}

func (s *Service) ToggleStatus(ctx context.Context, id string) (domain.Package, error) {
	pkg, err := s.findByID(ctx, id)
	if err != nil {
		return domain.Package{}, err
	}

	pkg.IsActive = !pkg.IsActive
	pkg.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, pkg); err != nil {
		return domain.Package{}, err
	}

	return *pkg, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Package, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, domain.ErrInvalidID
	}

	pkg, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}
	return pkg, nil
}
