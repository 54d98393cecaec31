package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Srengnx007/Khmer-AI/internal/domain"
)

// RequireRole rejects callers whose token role does not match. Use after
// AuthValidator. A role toggle takes effect when the target's token rotates.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeAuthErr(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if id.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "insufficient role", "code": "forbidden"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
