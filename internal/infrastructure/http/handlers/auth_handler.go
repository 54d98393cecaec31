package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Srengnx007/Khmer-AI/internal/application/auth"
	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	domerrors "github.com/Srengnx007/Khmer-AI/internal/domain/errors"
)

type AuthHandler struct {
	register *auth.RegisterUser
	login    *auth.Login
	refresh  *auth.Refresh
	logout   *auth.Logout
	enqueuer ports.TaskEnqueuer
	validate *validator.Validate
	log      zerolog.Logger
}

func NewAuthHandler(register *auth.RegisterUser, login *auth.Login, refresh *auth.Refresh, logout *auth.Logout, enqueuer ports.TaskEnqueuer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register: register,
		login:    login,
		refresh:  refresh,
		logout:   logout,
		enqueuer: enqueuer,
		validate: validator.New(),
		log:      log,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name" validate:"max=255"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,min=8,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	result, err := h.register.Execute(r.Context(), auth.RegisterUserInput{
		Name:     body.Name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "user.signup", "", "", false, err.Error())
		if err == domerrors.ErrUserExists {
			writeErr(w, http.StatusConflict, "", err.Error())
			return
		}
		if err == domerrors.ErrInvalidCredentials {
			writeErr(w, http.StatusBadRequest, "", "invalid email")
			return
		}
		h.log.Error().Err(err).Msg("signup failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "user.signup", result.User.ID.String(), result.User.ID.String(), true, "")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"uid":       result.User.ID.String(),
		"name":      result.User.Name,
		"email":     result.User.Email,
		"provider":  string(result.User.Provider),
		"role":      string(result.User.Role),
		"createdAt": result.User.CreatedAt,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	email := SanitizeEmail(body.Email)
	password := SanitizePassword(body.Password)
	if email == "" || password == "" {
		writeErr(w, http.StatusBadRequest, "", "invalid email or password length")
		return
	}
	result, err := h.login.Execute(r.Context(), auth.LoginInput{Email: email, Password: password})
	if err != nil {
		AuditEmit(h.log, r, h.enqueuer, "user.login", "", "", false, err.Error())
		switch err {
		case domerrors.ErrInvalidCredentials:
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
		case domerrors.ErrAccountLocked:
			writeErr(w, http.StatusTooManyRequests, ErrCodeAccountLocked, err.Error())
		default:
			h.log.Error().Err(err).Msg("login failed")
			writeErr(w, http.StatusInternalServerError, "", "internal error")
		}
		return
	}
	AuditEmit(h.log, r, h.enqueuer, "user.login", result.User.ID.String(), result.User.ID.String(), true, "")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
		"user": map[string]interface{}{
			"uid":      result.User.ID.String(),
			"name":     result.User.Name,
			"email":    result.User.Email,
			"photoURL": result.User.PhotoURL,
			"provider": string(result.User.Provider),
			"role":     string(result.User.Role),
		},
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token" validate:"required,max=1024"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.refresh.Execute(r.Context(), auth.RefreshInput{RefreshToken: body.RefreshToken})
	if err != nil {
		if err == domerrors.ErrInvalidToken || err == domerrors.ErrUserNotFound {
			writeErr(w, http.StatusUnauthorized, ErrCodeInvalidToken, domerrors.ErrInvalidToken.Error())
			return
		}
		h.log.Error().Err(err).Msg("refresh failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    result.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if err := h.logout.Execute(r.Context(), body.RefreshToken); err != nil {
		h.log.Error().Err(err).Msg("logout failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
