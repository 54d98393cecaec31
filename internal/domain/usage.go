package domain

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is one AI call charged against a user's quota. Append-only;
// the only read path is a count of records newer than a window start.
type UsageRecord struct {
	ID          uuid.UUID
	UserID      UserID
	Tool        string
	InputLength int
	CreatedAt   time.Time
}
