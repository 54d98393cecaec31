package ports

import (
	"context"
	"time"

	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

// UserRepository defines persistence for the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error)
	// List returns all users whose name or email contains search
	// (case-insensitive). Empty search returns everyone.
	List(ctx context.Context, search string) ([]*domain.User, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, name, photoURL string) error
	SetRole(ctx context.Context, userID domain.UserID, role domain.Role) error
	Delete(ctx context.Context, userID domain.UserID) error
}

// IdentityStore links provider identities (provider, provider_user_id) to users.
// The unique constraint on the pair is what keeps one directory record per uid.
type IdentityStore interface {
	Create(ctx context.Context, userID domain.UserID, provider domain.Provider, providerUserID string) error
	GetUserIDByProvider(ctx context.Context, provider domain.Provider, providerUserID string) (domain.UserID, error)
}

// UsageStore appends AI usage records and counts them inside a rolling window.
type UsageStore interface {
	Record(ctx context.Context, rec *domain.UsageRecord) error
	// CountSince returns how many records exist for (user, tool) with
	// created_at strictly after since.
	CountSince(ctx context.Context, userID domain.UserID, tool string, since time.Time) (int, error)
}

// RefreshTokenInfo is what the token store returns for a stored refresh token.
type RefreshTokenInfo struct {
	UserID    domain.UserID
	TokenID   string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// TokenStore defines storage for refresh tokens.
type TokenStore interface {
	StoreRefreshToken(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt int64) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshTokenInfo, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}
