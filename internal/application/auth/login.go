package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

const (
	DefaultAccessTokenExpiry  = 900    // 15 min
	DefaultRefreshTokenExpiry = 604800 // 7 days
)

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *domain.User
}

type Login struct {
	users      ports.UserRepository
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
	tokenStore ports.TokenStore
	lockout    ports.LoginLockoutStore
	accessExp  int64
	refreshExp int64
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, tokenStore ports.TokenStore, lockout ports.LoginLockoutStore, accessExp, refreshExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	if refreshExp <= 0 {
		refreshExp = DefaultRefreshTokenExpiry
	}
	return &Login{
		users:      users,
		hasher:     hasher,
		issuer:     issuer,
		tokenStore: tokenStore,
		lockout:    lockout,
		accessExp:  accessExp,
		refreshExp: refreshExp,
	}
}

func (uc *Login) Execute(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if uc.lockout != nil {
		if locked, _ := uc.lockout.IsLocked(ctx, input.Email); locked {
			return nil, domerrors.ErrAccountLocked
		}
	}
	user, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" || !uc.hasher.Verify(input.Password, user.PasswordHash) {
		if uc.lockout != nil {
			uc.lockout.RecordFailure(ctx, input.Email)
		}
		return nil, domerrors.ErrInvalidCredentials
	}
	if uc.lockout != nil {
		uc.lockout.RecordSuccess(ctx, input.Email)
	}
	return issueSession(ctx, uc.issuer, uc.tokenStore, user, uc.accessExp, uc.refreshExp)
}

// issueSession mints an access token and a stored refresh token for user.
func issueSession(ctx context.Context, issuer ports.TokenIssuer, store ports.TokenStore, user *domain.User, accessExp, refreshExp int64) (*LoginResult, error) {
	accessToken, err := issuer.IssueAccessToken(user.ID.String(), string(user.Provider), string(user.Role), accessExp)
	if err != nil {
		return nil, err
	}
	refreshRaw := make([]byte, 32)
	if _, err := rand.Read(refreshRaw); err != nil {
		return nil, err
	}
	refreshToken := hex.EncodeToString(refreshRaw)
	expiresAt := time.Now().Add(time.Duration(refreshExp) * time.Second).Unix()
	if err := store.StoreRefreshToken(ctx, user.ID, hashForStorage(refreshToken), expiresAt); err != nil {
		return nil, err
	}
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    accessExp,
		User:         user,
	}, nil
}

// hashForStorage returns the value stored for refresh token lookup.
func hashForStorage(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
