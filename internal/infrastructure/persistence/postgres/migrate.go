package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT 'unknown',
		role TEXT NOT NULL DEFAULT 'user',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users (lower(email)) WHERE email <> ''`,
	`CREATE TABLE IF NOT EXISTS identities (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		provider TEXT NOT NULL,
		provider_user_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (provider, provider_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ai_usage (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		tool TEXT NOT NULL,
		input_length INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS ai_usage_window_idx ON ai_usage (user_id, tool, created_at)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		token_hash TEXT PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
