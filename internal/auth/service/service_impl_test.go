package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/auth/domain"
	authrepo "github.com/smallbiznis/netbill/internal/auth/repository"
	authservice "github.com/smallbiznis/netbill/internal/auth/service"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuth(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.User{}))

	svc := authservice.New(authservice.Params{
		DB:  gdb,
		Log: zap.NewNop(),
		// Token expiry is validated against the wall clock, so the fake
		// starts at real time.
		Clock: clock.NewFakeClock(time.Now().UTC()),
		Config: config.Config{
			AuthJWTSecret:     "test-secret",
			AuthTokenTTLHours: 24,
		},
		Repo: authrepo.Provide(),
	})
	return gdb, svc
}

func seedUser(t *testing.T, gdb *gorm.DB, email, password string, active bool) *domain.User {
	t.Helper()

	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := &domain.User{
		ID:             node.Generate(),
		Email:          email,
		Username:       "admin",
		FullName:       "Administrator",
		HashedPassword: string(hashed),
		IsActive:       active,
		Role:           domain.RoleAdmin,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupAuth(t)
	user := seedUser(t, gdb, "admin@example.com", "s3cret", true)

	resp, err := svc.Login(ctx, domain.LoginRequest{Email: "Admin@Example.com", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "bearer", resp.TokenType)
	require.Equal(t, user.ID, resp.User.ID)
	require.NotNil(t, resp.User.LastLogin)

	subject, err := svc.VerifyToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), subject)

	me, err := svc.Me(ctx, subject)
	require.NoError(t, err)
	require.Equal(t, user.Email, me.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupAuth(t)
	seedUser(t, gdb, "admin@example.com", "s3cret", true)

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "missing@example.com", Password: "s3cret"})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Email: "", Password: ""})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	ctx := context.Background()
	gdb, svc := setupAuth(t)
	seedUser(t, gdb, "admin@example.com", "s3cret", false)

	_, err := svc.Login(ctx, domain.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, svc := setupAuth(t)

	_, err := svc.VerifyToken("not-a-token")
	require.ErrorIs(t, err, domain.ErrInvalidToken)
}
