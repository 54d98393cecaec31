package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

const (
	createRefreshTokenSQL = `INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, NOW())`
	getRefreshTokenSQL    = `SELECT token_hash, user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = $1`
	revokeRefreshTokenSQL = `UPDATE refresh_tokens SET revoked_at = COALESCE(revoked_at, NOW()) WHERE token_hash = $1`
)

// TokenStore implements ports.TokenStore on pgx. Tokens are stored hashed.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) StoreRefreshToken(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt int64) error {
	_, err := s.pool.Exec(ctx, createRefreshTokenSQL, tokenHash, userID.UUID, time.Unix(expiresAt, 0))
	return err
}

func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshTokenInfo, error) {
	var info ports.RefreshTokenInfo
	var revokedAt *time.Time
	err := s.pool.QueryRow(ctx, getRefreshTokenSQL, tokenHash).
		Scan(&info.TokenID, &info.UserID.UUID, &info.ExpiresAt, &revokedAt)
	if err != nil {
		return nil, err
	}
	info.RevokedAt = revokedAt
	return &info, nil
}

func (s *TokenStore) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := s.pool.Exec(ctx, revokeRefreshTokenSQL, tokenHash)
	if err == pgx.ErrNoRows {
		return nil
	}
	return err
}

var _ ports.TokenStore = (*TokenStore)(nil)
