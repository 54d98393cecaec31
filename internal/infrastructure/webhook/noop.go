package webhook

import (
	"context"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

// NoopEmitter discards audit events. Used when no webhook URL is configured.
type NoopEmitter struct{}

func NewNoopEmitter() *NoopEmitter { return &NoopEmitter{} }

func (e *NoopEmitter) Emit(ctx context.Context, event ports.AuditEvent) error { return nil }

var _ ports.WebhookEmitter = (*NoopEmitter)(nil)
