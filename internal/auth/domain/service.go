package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, userID string) (User, error)
	// VerifyToken validates a bearer token and returns the subject user id.
	VerifyToken(token string) (string, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUserInactive       = errors.New("user_inactive")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
)
