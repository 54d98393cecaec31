package errors

import "errors"

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrUserExists         = errors.New("account already exists for this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrAccountLocked      = errors.New("too many failed attempts; try again later")
	ErrRateLimited        = errors.New("hourly request quota exceeded")
	ErrSelfForbidden      = errors.New("admins cannot change or delete their own account")
)
