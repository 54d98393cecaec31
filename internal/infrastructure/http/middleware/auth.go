package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Srengnx007/Khmer-AI/internal/application/ports"
	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

// AuthValidator validates the bearer JWT and sets the caller identity in
// context (see IdentityFromContext).
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			writeAuthErr(w, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		identity, err := m.resolve(tokenString)
		if err != nil {
			writeAuthErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// Optional resolves the identity when a token is present and passes the
// request through anonymously otherwise. A malformed token is still a 401:
// a caller that sends credentials gets told when they are bad.
func (m *AuthValidator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}
		identity, err := m.resolve(tokenString)
		if err != nil {
			writeAuthErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *AuthValidator) resolve(tokenString string) (Identity, error) {
	userIDStr, provider, role, err := m.issuer.ValidateAccessToken(tokenString)
	if err != nil {
		return Identity{}, err
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:   domain.NewUserID(userID),
		Provider: domain.ParseProvider(provider),
		Role:     domain.Role(role),
	}, nil
}

// extractToken reads the bearer token from the Authorization header, falling
// back to the access_token query parameter for websocket clients that cannot
// set headers.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

func writeAuthErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": "unauthorized"})
}
