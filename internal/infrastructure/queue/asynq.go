package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

const TypeAuditWebhook = "webhook:audit"

// TaskEnqueuer hands audit events to Asynq for async webhook delivery.
type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) (*TaskEnqueuer, error) {
	client := asynq.NewClient(redisOpt)
	return &TaskEnqueuer{client: client, log: log}, nil
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueAuditWebhook(ctx context.Context, event ports.AuditEvent) error {
	payload, _ := json.Marshal(event)
	task := asynq.NewTask(TypeAuditWebhook, payload)
	_, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("event", event.Event).Msg("enqueue audit webhook failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
