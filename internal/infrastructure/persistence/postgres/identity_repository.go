package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

const (
	createIdentitySQL      = `INSERT INTO identities (id, user_id, provider, provider_user_id, created_at) VALUES ($1, $2, $3, $4, NOW())`
	getUserIDByProviderSQL = `SELECT user_id FROM identities WHERE provider = $1 AND provider_user_id = $2`
)

// IdentityRepository implements ports.IdentityStore. The unique
// (provider, provider_user_id) constraint keeps one user per identity.
type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, userID domain.UserID, provider domain.Provider, providerUserID string) error {
	_, err := r.pool.Exec(ctx, createIdentitySQL, uuid.New(), userID.UUID, string(provider), providerUserID)
	return err
}

func (r *IdentityRepository) GetUserIDByProvider(ctx context.Context, provider domain.Provider, providerUserID string) (domain.UserID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, getUserIDByProviderSQL, string(provider), providerUserID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.UserID{}, domerrors.ErrIdentityNotFound
		}
		return domain.UserID{}, err
	}
	return domain.NewUserID(id), nil
}

var _ ports.IdentityStore = (*IdentityRepository)(nil)
