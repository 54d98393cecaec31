package feed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

// Snapshot is one state of the user directory pushed to subscribers.
type Snapshot struct {
	Users []*domain.User
}

// Source produces directory snapshots for subscribers. The polling
// implementation below works against any store; a push-capable store could
// implement the same interface without polling.
type Source interface {
	// Subscribe streams snapshots until ctx is cancelled. The current state
	// is always delivered first; later snapshots only when the set changed.
	Subscribe(ctx context.Context) (<-chan Snapshot, error)
}

// PollWatcher implements Source by polling the user repository.
type PollWatcher struct {
	users    ports.UserRepository
	interval time.Duration
	log      zerolog.Logger
}

func NewPollWatcher(users ports.UserRepository, interval time.Duration, log zerolog.Logger) *PollWatcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &PollWatcher{users: users, interval: interval, log: log}
}

func (w *PollWatcher) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	users, err := w.users.List(ctx, "")
	if err != nil {
		return nil, err
	}
	ch := make(chan Snapshot, 1)
	ch <- Snapshot{Users: users}
	go w.run(ctx, ch, fingerprint(users))
	return ch, nil
}

func (w *PollWatcher) run(ctx context.Context, ch chan<- Snapshot, last string) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			users, err := w.users.List(ctx, "")
			if err != nil {
				w.log.Warn().Err(err).Msg("user feed poll failed")
				continue
			}
			fp := fingerprint(users)
			if fp == last {
				continue
			}
			last = fp
			select {
			case ch <- Snapshot{Users: users}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// fingerprint condenses the list into a comparable digest so unchanged polls
// emit nothing.
func fingerprint(users []*domain.User) string {
	h := sha256.New()
	for _, u := range users {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s\n", u.ID, u.Name, u.Email, u.Role, u.UpdatedAt.UTC())
	}
	return hex.EncodeToString(h.Sum(nil))
}

var _ Source = (*PollWatcher)(nil)
