package middleware

import (
	"log/slog"
	"net/http"

	"github.com/develper21/MeterBeacon/internal/auth"
)

// RequirePermissions creates middleware that checks the caller's role against
// the permission catalog. The caller must hold at least one of the listed
// permissions.
func RequirePermissions(gate *auth.Gate, permissions ...auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !gate.HasAnyPermission(user.Role, permissions) {
				slog.Warn("access denied: user lacks required permissions",
					"user_id", user.ID,
					"role", user.Role,
					"required_permissions", permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
