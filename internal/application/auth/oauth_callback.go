package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

// OAuthUser is the minimal info we get from a provider (Goth user).
type OAuthUser struct {
	Provider       string
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}

// OAuthCallback finds or creates the directory record for a federated
// identity and issues a session. The first sign-in creates exactly one record
// with role=user; later sign-ins resolve the same record via the identity link.
type OAuthCallback struct {
	identities ports.IdentityStore
	users      ports.UserRepository
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	accessExp  int64
	refreshExp int64
}

func NewOAuthCallback(identities ports.IdentityStore, users ports.UserRepository, issuer ports.TokenIssuer, tokenStore ports.TokenStore, accessExp, refreshExp int64) *OAuthCallback {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &OAuthCallback{
		identities: identities,
		users:      users,
		issuer:     issuer,
		tokenStore: tokenStore,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *OAuthCallback) Execute(ctx context.Context, oauth OAuthUser) (*LoginResult, error) {
	provider := domain.ParseProvider(oauth.Provider)
	userID, err := uc.identities.GetUserIDByProvider(ctx, provider, oauth.ProviderUserID)
	if err == nil {
		// Existing identity: load the record and issue a session.
		user, err := uc.users.GetByID(ctx, userID)
		if err != nil || user == nil {
			return nil, domerrors.ErrUserNotFound
		}
		return issueSession(ctx, uc.issuer, uc.tokenStore, user, uc.accessExp, uc.refreshExp)
	}
	if err != domerrors.ErrIdentityNotFound {
		return nil, err
	}
	// New identity: link to an existing account by email, or create one.
	if oauth.Email != "" {
		user, err := uc.users.GetByEmail(ctx, oauth.Email)
		if err != nil {
			return nil, err
		}
		if user != nil {
			if err := uc.identities.Create(ctx, user.ID, provider, oauth.ProviderUserID); err != nil {
				return nil, err
			}
			return issueSession(ctx, uc.issuer, uc.tokenStore, user, uc.accessExp, uc.refreshExp)
		}
	}
	now := time.Now()
	user := &domain.User{
		ID:        domain.NewUserID(uuid.New()),
		Name:      oauth.Name,
		Email:     oauth.Email,
		PhotoURL:  oauth.AvatarURL,
		Provider:  provider,
		Role:      domain.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uc.identities.Create(ctx, user.ID, provider, oauth.ProviderUserID); err != nil {
		return nil, err
	}
	return issueSession(ctx, uc.issuer, uc.tokenStore, user, uc.accessExp, uc.refreshExp)
}
