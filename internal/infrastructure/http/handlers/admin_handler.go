package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/admin"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/feed"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
)

// AdminHandler handles /admin/* endpoints. Routes must be wrapped with
// AuthValidator and RequireRole(admin).
type AdminHandler struct {
	list     *admin.ListUsers
	toggle   *admin.ToggleRole
	remove   *admin.DeleteUser
	source   feed.Source
	enqueuer ports.TaskEnqueuer
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewAdminHandler(list *admin.ListUsers, toggle *admin.ToggleRole, remove *admin.DeleteUser, source feed.Source, enqueuer ports.TaskEnqueuer, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		list:     list,
		toggle:   toggle,
		remove:   remove,
		source:   source,
		enqueuer: enqueuer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Browser clients send the access token in the query, not in a
			// header, so the origin check is the router's CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ListUsers returns the full directory, optionally filtered by ?search=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.list.Execute(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.log.Error().Err(err).Msg("list users failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	items := make([]MeResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toMeResponse(u))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": items, "total": len(items)})
}

// ToggleRole flips the target user between the user and admin roles.
func (h *AdminHandler) ToggleRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	user, err := h.toggle.Execute(r.Context(), identity.UserID, domain.NewUserID(targetID))
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "admin.role_toggle", identity.UserID.String(), targetID.String(), false, err.Error())
		switch {
		case errors.Is(err, domerrors.ErrSelfForbidden):
			writeErr(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			h.log.Error().Err(err).Msg("role toggle failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "admin.role_toggle", identity.UserID.String(), targetID.String(), true, "")
	writeJSON(w, http.StatusOK, toMeResponse(user))
}

// DeleteUser removes the target user's directory record.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid user id")
		return
	}
	if err := h.remove.Execute(r.Context(), identity.UserID, domain.NewUserID(targetID)); err != nil {
		AuditEmit(h.log, r, h.enqueuer, "admin.user_delete", identity.UserID.String(), targetID.String(), false, err.Error())
		switch {
		case errors.Is(err, domerrors.ErrSelfForbidden):
			writeErr(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
		case errors.Is(err, domerrors.ErrUserNotFound):
			writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			h.log.Error().Err(err).Msg("user delete failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "admin.user_delete", identity.UserID.String(), targetID.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

const watchWriteTimeout = 10 * time.Second

// WatchUsers upgrades to a websocket and streams directory snapshots. The
// current state is sent immediately; later frames only when something
// changed.
func (h *AdminHandler) WatchUsers(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.source.Subscribe(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("user feed subscribe failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for snapshot := range snapshots {
		items := make([]MeResponse, 0, len(snapshot.Users))
		for _, u := range snapshot.Users {
			items = append(items, toMeResponse(u))
		}
		_ = conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
		if err := conn.WriteJSON(map[string]interface{}{"users": items, "total": len(items)}); err != nil {
			return
		}
	}
}
