package assistant

import (
	"context"
	"time"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
	"github.com/google/uuid"
)

const (
	DefaultQuotaLimit  = 20
	DefaultQuotaWindow = time.Hour
)

// Quota caps a user to limit requests per rolling window for a given tool,
// backed by the append-only usage store.
type Quota struct {
	usage  ports.UsageStore
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewQuota(usage ports.UsageStore, limit int, window time.Duration) *Quota {
	if limit <= 0 {
		limit = DefaultQuotaLimit
	}
	if window <= 0 {
		window = DefaultQuotaWindow
	}
	return &Quota{usage: usage, limit: limit, window: window, now: time.Now}
}

// Check returns ErrRateLimited when the user already spent the window's quota
// on this tool. It does not consume anything; call Consume after success.
func (q *Quota) Check(ctx context.Context, userID domain.UserID, tool string) error {
	since := q.now().Add(-q.window)
	count, err := q.usage.CountSince(ctx, userID, tool, since)
	if err != nil {
		return err
	}
	if count >= q.limit {
		return domerrors.ErrRateLimited
	}
	return nil
}

// Consume appends one usage record with the current server timestamp.
func (q *Quota) Consume(ctx context.Context, userID domain.UserID, tool string, inputLength int) error {
	return q.usage.Record(ctx, &domain.UsageRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Tool:        tool,
		InputLength: inputLength,
		CreatedAt:   q.now(),
	})
}
