package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

const (
	recordUsageSQL = `INSERT INTO ai_usage (id, user_id, tool, input_length, created_at) VALUES ($1, $2, $3, $4, $5)`
	countUsageSQL  = `SELECT COUNT(*) FROM ai_usage WHERE user_id = $1 AND tool = $2 AND created_at > $3`
)

// UsageRepository implements ports.UsageStore. Append-only; no update or
// delete path exists.
type UsageRepository struct {
	pool *pgxpool.Pool
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func (r *UsageRepository) Record(ctx context.Context, rec *domain.UsageRecord) error {
	_, err := r.pool.Exec(ctx, recordUsageSQL, rec.ID, rec.UserID.UUID, rec.Tool, rec.InputLength, rec.CreatedAt)
	return err
}

func (r *UsageRepository) CountSince(ctx context.Context, userID domain.UserID, tool string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, countUsageSQL, userID.UUID, tool, since).Scan(&count)
	return count, err
}

var _ ports.UsageStore = (*UsageRepository)(nil)
