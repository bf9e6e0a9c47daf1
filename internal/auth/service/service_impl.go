package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	jwt "github.com/golang-jwt/jwt/v4"
	"github.com/smallbiznis/netbill/internal/auth/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
	Repo   domain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	secret   []byte
	tokenTTL time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("auth.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		secret:   []byte(p.Config.AuthJWTSecret),
		tokenTTL: time.Duration(p.Config.AuthTokenTTLHours) * time.Hour,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return domain.TokenResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.TokenResponse{}, err
	}
	if user == nil {
		return domain.TokenResponse{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return domain.TokenResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.TokenResponse{}, domain.ErrUserInactive
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.TokenResponse{}, err
	}

	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.TokenResponse{}, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        *user,
	}, nil
}

func (s *Service) Me(ctx context.Context, userID string) (domain.User, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(userID))
	if err != nil || id == 0 {
		return domain.User{}, domain.ErrInvalidID
	}

	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) VerifyToken(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}
