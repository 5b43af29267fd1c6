package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization wraps the gate into route middleware. Every protected
// dashboard action funnels through here before its handler runs.
type RBACAuthorization struct {
	gate   *Gate
	logger *slog.Logger
}

func NewRBACAuthorization(gate *Gate, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		gate:   gate,
		logger: logger,
	}
}

// Require builds middleware denying callers whose role lacks the permission.
func (ra *RBACAuthorization) Require(permission Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				ra.logger.Warn("authorization check failed: user not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !ra.gate.HasPermission(user.Role, permission) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"role", user.Role,
					"required_permission", permission)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny passes when the caller's role holds at least one of the listed
// permissions.
func (ra *RBACAuthorization) RequireAny(permissions ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !ra.gate.HasAnyPermission(user.Role, permissions) {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
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

func (ra *RBACAuthorization) RequireViewDashboard() func(http.Handler) http.Handler {
	return ra.Require(PermViewDashboard)
}

func (ra *RBACAuthorization) RequireViewAnalytics() func(http.Handler) http.Handler {
	return ra.Require(PermViewAnalytics)
}

func (ra *RBACAuthorization) RequireAddTracker() func(http.Handler) http.Handler {
	return ra.Require(PermAddTracker)
}

func (ra *RBACAuthorization) RequireEditTracker() func(http.Handler) http.Handler {
	return ra.Require(PermEditTracker)
}

func (ra *RBACAuthorization) RequireDeleteTracker() func(http.Handler) http.Handler {
	return ra.Require(PermDeleteTracker)
}

func (ra *RBACAuthorization) RequireViewUsers() func(http.Handler) http.Handler {
	return ra.Require(PermViewUsers)
}

func (ra *RBACAuthorization) RequireManageDevices() func(http.Handler) http.Handler {
	return ra.Require(PermManageDevices)
}

func (ra *RBACAuthorization) RequireSystemConfig() func(http.Handler) http.Handler {
	return ra.Require(PermSystemConfig)
}
