package queue

import (
	"context"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

// InlineEnqueuer delivers audit events synchronously when Redis/Asynq is not
// configured. Delivery failures are logged, never surfaced to the caller.
type InlineEnqueuer struct {
	emitter ports.WebhookEmitter
}

func NewInlineEnqueuer(emitter ports.WebhookEmitter) *InlineEnqueuer {
	return &InlineEnqueuer{emitter: emitter}
}

func (q *InlineEnqueuer) EnqueueAuditWebhook(ctx context.Context, event ports.AuditEvent) error {
	return q.emitter.Emit(ctx, event)
}

var _ ports.TaskEnqueuer = (*InlineEnqueuer)(nil)
