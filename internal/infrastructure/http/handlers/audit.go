package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
)

// AuditLog logs auth and admin events (actor, affected user, IP).
func AuditLog(log zerolog.Logger, r *http.Request, event, actorID, userID string, success bool, errMsg string) {
	ev := log.Info()
	if !success {
		ev = log.Warn()
	}
	ev.
		Str("event", event).
		Str("actor_id", actorID).
		Str("user_id", userID).
		Str("ip", getClientIP(r)).
		Str("request_id", middleware.GetReqID(r.Context())).
		Bool("success", success)
	if errMsg != "" {
		ev.Str("error", errMsg)
	}
	ev.Msg("audit")
}

// AuditEmit logs the event and, if enqueuer is non-nil, hands it off for
// webhook delivery.
func AuditEmit(log zerolog.Logger, r *http.Request, enqueuer ports.TaskEnqueuer, event, actorID, userID string, success bool, errMsg string) {
	AuditLog(log, r, event, actorID, userID, success, errMsg)
	if enqueuer != nil {
		_ = enqueuer.EnqueueAuditWebhook(r.Context(), ports.AuditEvent{
			Event:   event,
			ActorID: actorID,
			UserID:  userID,
			IP:      getClientIP(r),
			Success: success,
			Err:     errMsg,
		})
	}
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return r.RemoteAddr
}
