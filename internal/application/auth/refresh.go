package auth

import (
	"context"
	"time"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

type RefreshInput struct {
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Refresh exchanges a valid refresh token for a new session. The role claim
// is re-read from the directory so an admin toggle takes effect on rotation.
type Refresh struct {
	users      ports.UserRepository
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	accessExp  int64
	refreshExp int64
}

func NewRefresh(users ports.UserRepository, issuer ports.TokenIssuer, tokenStore ports.TokenStore, accessExp, refreshExp int64) *Refresh {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Refresh{
		users:      users,
		issuer:     issuer,
		tokenStore: tokenStore,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Refresh) Execute(ctx context.Context, input RefreshInput) (*RefreshResult, error) {
	if input.RefreshToken == "" {
		return nil, domerrors.ErrInvalidToken
	}
	tokenHash := hashForStorage(input.RefreshToken)
	info, err := uc.tokenStore.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, domerrors.ErrInvalidToken
	}
	if info.RevokedAt != nil || time.Now().After(info.ExpiresAt) {
		return nil, domerrors.ErrInvalidToken
	}
	user, err := uc.users.GetByID(ctx, info.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	// Rotate: revoke the presented token, issue a fresh pair.
	if err := uc.tokenStore.RevokeRefreshToken(ctx, tokenHash); err != nil {
		return nil, err
	}
	session, err := issueSession(ctx, uc.issuer, uc.tokenStore, user, uc.accessExp, uc.refreshExp)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op.
type Logout struct {
	tokenStore ports.TokenStore
}

func NewLogout(tokenStore ports.TokenStore) *Logout {
	return &Logout{tokenStore: tokenStore}
}

func (uc *Logout) Execute(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.tokenStore.RevokeRefreshToken(ctx, hashForStorage(refreshToken))
}
