package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
	"github.com/Srengnx007/Khmer-AI/internal/infrastructure/http/middleware"
)

// UsersHandler handles /users/* (e.g. GET /users/me). Requires JWT auth.
type UsersHandler struct {
	userRepo ports.UserRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewUsersHandler(userRepo ports.UserRepository, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{userRepo: userRepo, validate: validator.New(), log: log}
}

// MeResponse is the JSON shape for GET /users/me (no password hash).
type MeResponse struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	PhotoURL  string `json:"photoURL,omitempty"`
	Provider  string `json:"provider"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toMeResponse(u *domain.User) MeResponse {
	return MeResponse{
		UID:       u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		PhotoURL:  u.PhotoURL,
		Provider:  string(u.Provider),
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// Me returns the current user's directory record. The role comes from the
// directory, not the token, so a toggle is visible on the next read.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Msg("get user failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, "", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, toMeResponse(user))
}

// UpdateMe updates the caller's display name and photo URL.
func (h *UsersHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
		return
	}
	var body struct {
		Name     string `json:"name" validate:"max=255"`
		PhotoURL string `json:"photoURL" validate:"omitempty,url,max=2048"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	userID := identity.UserID
	if err := h.userRepo.UpdateProfile(r.Context(), userID, body.Name, body.PhotoURL); err != nil {
		h.log.Error().Err(err).Msg("update profile failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil || user == nil {
		h.log.Error().Err(err).Msg("reload user failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toMeResponse(user))
}
