package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

type stubIssuer struct{}

// Tokens look like "uid|provider|role"; anything else is invalid.
func (stubIssuer) IssueAccessToken(userID, provider, role string, expiresInSeconds int64) (string, error) {
	return userID + "|" + provider + "|" + role, nil
}

func (stubIssuer) ValidateAccessToken(tokenString string) (string, string, string, error) {
	parts := strings.Split(tokenString, "|")
	if len(parts) != 3 {
		return "", "", "", errors.New("invalid token")
	}
	return parts[0], parts[1], parts[2], nil
}

func identityEcho(t *testing.T, got *Identity) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := IdentityFromContext(r.Context()); ok {
			*got = id
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthValidator_SetsIdentityFromBearerToken(t *testing.T) {
	uid := uuid.New()
	var got Identity
	handler := NewAuthValidator(stubIssuer{}).Handler(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+uid.String()+"|google|admin")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.NewUserID(uid), got.UserID)
	require.Equal(t, domain.ProviderGoogle, got.Provider)
	require.Equal(t, domain.RoleAdmin, got.Role)
}

func TestAuthValidator_AcceptsQueryToken(t *testing.T) {
	uid := uuid.New()
	var got Identity
	handler := NewAuthValidator(stubIssuer{}).Handler(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/admin/users/watch?access_token="+uid.String()+"|password|user", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.NewUserID(uid), got.UserID)
}

func TestAuthValidator_MissingToken(t *testing.T) {
	handler := NewAuthValidator(stubIssuer{}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidator_MalformedToken(t *testing.T) {
	handler := NewAuthValidator(stubIssuer{}).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptional_PassesAnonymousThrough(t *testing.T) {
	var sawIdentity bool
	handler := NewAuthValidator(stubIssuer{}).Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawIdentity = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/tools/summarizer", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, sawIdentity)
}

func TestOptional_RejectsBadToken(t *testing.T) {
	handler := NewAuthValidator(stubIssuer{}).Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/tools/translator", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{
		UserID: domain.NewUserID(uuid.New()),
		Role:   domain.RoleAdmin,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_ForbidsOtherRoles(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{
		UserID: domain.NewUserID(uuid.New()),
		Role:   domain.RoleUser,
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_AnonymousIsUnauthorized(t *testing.T) {
	handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
