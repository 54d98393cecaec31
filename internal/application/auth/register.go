package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
}

type RegisterUserResult struct {
	User *domain.User
}

// RegisterUser creates a password-provider account with role=user.
type RegisterUser struct {
	users      ports.UserRepository
	identities ports.IdentityStore
	hasher     ports.PasswordHasher
}

func NewRegisterUser(users ports.UserRepository, identities ports.IdentityStore, hasher ports.PasswordHasher) *RegisterUser {
	return &RegisterUser{users: users, identities: identities, hasher: hasher}
}

func (uc *RegisterUser) Execute(ctx context.Context, input RegisterUserInput) (*RegisterUserResult, error) {
	if !emailRegex.MatchString(input.Email) {
		return nil, domerrors.ErrInvalidCredentials
	}
	existing, err := uc.users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domerrors.ErrUserExists
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		Name:         input.Name,
		Email:        input.Email,
		Provider:     domain.ProviderPassword,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	// Password accounts own their identity: the uid doubles as the provider id.
	if err := uc.identities.Create(ctx, user.ID, domain.ProviderPassword, user.ID.String()); err != nil {
		return nil, err
	}
	return &RegisterUserResult{User: user}, nil
}
