package auth

import (
	"errors"
	"time"

	"github.com/classpass/backend/internal/domain/enums"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrUserNotFound       = errors.New("user not found")
)

type SessionRecord struct {
	SID       string
	UserID    int64
	Role      enums.Role
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

type UserRecord struct {
	ID           int64
	Login        string
	DisplayName  string
	PasswordHash string
	Role         enums.Role
}

type Me struct {
	ID          int64
	Login       string
	DisplayName string
	Role        enums.Role
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
