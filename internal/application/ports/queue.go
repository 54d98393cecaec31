package ports

import "context"

// TaskEnqueuer enqueues async tasks (audit webhook delivery).
type TaskEnqueuer interface {
	EnqueueAuditWebhook(ctx context.Context, event AuditEvent) error
}
