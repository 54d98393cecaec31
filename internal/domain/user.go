package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserID is a value object for user identity.
type UserID struct{ uuid.UUID }

// NewUserID creates a new UserID from uuid.
func NewUserID(id uuid.UUID) UserID { return UserID{UUID: id} }

// String returns the canonical string form.
func (u UserID) String() string { return u.UUID.String() }

// Provider is the sign-in method that created the account.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderGitHub   Provider = "github"
	ProviderPassword Provider = "password"
	ProviderUnknown  Provider = "unknown"
)

// ParseProvider maps a raw provider tag to a known Provider.
func ParseProvider(s string) Provider {
	switch s {
	case "google":
		return ProviderGoogle
	case "github":
		return ProviderGitHub
	case "password":
		return ProviderPassword
	default:
		return ProviderUnknown
	}
}

// Role is the binary authorization level.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Toggle flips user<->admin.
func (r Role) Toggle() Role {
	if r == RoleAdmin {
		return RoleUser
	}
	return RoleAdmin
}

// User is an account in the user directory, created lazily on first sign-in.
type User struct {
	ID           UserID
	Name         string
	Email        string
	PhotoURL     string
	Provider     Provider
	Role         Role
	PasswordHash string // empty for federated accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
