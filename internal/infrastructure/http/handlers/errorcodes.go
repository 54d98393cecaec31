package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for
// stable client handling.
const (
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeAccountLocked      = "account_locked"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeInternal           = "internal_error"
)
