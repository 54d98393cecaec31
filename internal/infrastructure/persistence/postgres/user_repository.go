package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

const (
	createUserSQL = `INSERT INTO users (id, name, email, photo_url, provider, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	getUserByEmailSQL = `SELECT id, name, email, photo_url, provider, role, password_hash, created_at, updated_at
		FROM users WHERE lower(email) = lower($1)`
	getUserByIDSQL = `SELECT id, name, email, photo_url, provider, role, password_hash, created_at, updated_at
		FROM users WHERE id = $1`
	listUsersSQL = `SELECT id, name, email, photo_url, provider, role, password_hash, created_at, updated_at
		FROM users WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' ORDER BY created_at`
	updateProfileSQL = `UPDATE users SET name = $1, photo_url = $2, updated_at = NOW() WHERE id = $3`
	setRoleSQL       = `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
	deleteUserSQL    = `DELETE FROM users WHERE id = $1`
)

// UserRepository implements ports.UserRepository on pgx.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, createUserSQL,
		user.ID.UUID, user.Name, user.Email, user.PhotoURL,
		string(user.Provider), string(user.Role), user.PasswordHash,
		user.CreatedAt, user.UpdatedAt)
	return err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, nil
	}
	return r.scanOne(r.pool.QueryRow(ctx, getUserByEmailSQL, email))
}

func (r *UserRepository) GetByID(ctx context.Context, userID domain.UserID) (*domain.User, error) {
	return r.scanOne(r.pool.QueryRow(ctx, getUserByIDSQL, userID.UUID))
}

func (r *UserRepository) List(ctx context.Context, search string) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userID domain.UserID, name, photoURL string) error {
	_, err := r.pool.Exec(ctx, updateProfileSQL, name, photoURL, userID.UUID)
	return err
}

func (r *UserRepository) SetRole(ctx context.Context, userID domain.UserID, role domain.Role) error {
	_, err := r.pool.Exec(ctx, setRoleSQL, string(role), userID.UUID)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, userID domain.UserID) error {
	_, err := r.pool.Exec(ctx, deleteUserSQL, userID.UUID)
	return err
}

func (r *UserRepository) scanOne(row pgx.Row) (*domain.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var provider, role string
	if err := row.Scan(&u.ID.UUID, &u.Name, &u.Email, &u.PhotoURL, &provider, &role,
		&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Provider = domain.ParseProvider(provider)
	u.Role = domain.Role(role)
	return &u, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
