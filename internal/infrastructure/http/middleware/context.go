package middleware

import (
	"context"

	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated caller, resolved from the access token once
// per request and handed to handlers through the request context.
type Identity struct {
	UserID   domain.UserID
	Provider domain.Provider
	Role     domain.Role
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the caller identity, or ok=false for
// anonymous requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityContextKey)
	if v == nil {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
