package ports

import "context"

// AuditEvent is a single audit event for logging or webhooks.
type AuditEvent struct {
	Event   string // event type: user.signup, user.login, admin.role_toggle, etc.
	ActorID string // user who performed the action
	UserID  string // affected user (may equal ActorID)
	Tool    string // set for tool invocations
	IP      string
	Success bool
	Err     string
}

// WebhookEmitter sends audit events to an external endpoint.
type WebhookEmitter interface {
	Emit(ctx context.Context, event AuditEvent) error
}
