package errors

import (
	"errors"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountLocked        = errors.New("account is temporarily locked due to failed login attempts")
	ErrInvalidToken         = errors.New("invalid token")
	ErrRefreshTokenNotFound = errors.New("invalid refresh token")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrEmailTaken           = errors.New("email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidRole          = errors.New("invalid role")
)
