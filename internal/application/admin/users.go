package admin

import (
	"context"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

// ListUsers returns the directory, filtered by a case-insensitive substring
// match against name or email.
type ListUsers struct {
	users ports.UserRepository
}

func NewListUsers(users ports.UserRepository) *ListUsers {
	return &ListUsers{users: users}
}

func (uc *ListUsers) Execute(ctx context.Context, search string) ([]*domain.User, error) {
	return uc.users.List(ctx, search)
}

// ToggleRole flips a user's role between user and admin. Admins cannot
// demote themselves.
type ToggleRole struct {
	users ports.UserRepository
}

func NewToggleRole(users ports.UserRepository) *ToggleRole {
	return &ToggleRole{users: users}
}

func (uc *ToggleRole) Execute(ctx context.Context, actorID, targetID domain.UserID) (*domain.User, error) {
	if actorID == targetID {
		return nil, domerrors.ErrSelfForbidden
	}
	user, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domerrors.ErrUserNotFound
	}
	newRole := user.Role.Toggle()
	if err := uc.users.SetRole(ctx, targetID, newRole); err != nil {
		return nil, err
	}
	user.Role = newRole
	return user, nil
}

// DeleteUser removes a directory record. Admins cannot delete themselves.
type DeleteUser struct {
	users ports.UserRepository
}

func NewDeleteUser(users ports.UserRepository) *DeleteUser {
	return &DeleteUser{users: users}
}

func (uc *DeleteUser) Execute(ctx context.Context, actorID, targetID domain.UserID) error {
	if actorID == targetID {
		return domerrors.ErrSelfForbidden
	}
	user, err := uc.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return domerrors.ErrUserNotFound
	}
	return uc.users.Delete(ctx, targetID)
}
