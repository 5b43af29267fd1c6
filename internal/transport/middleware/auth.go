package middleware

import (
	"net/http"

	"github.com/develper21/MeterBeacon/internal"
	"github.com/develper21/MeterBeacon/internal/auth"
	"github.com/develper21/MeterBeacon/pkg/logger"
)

// UserContext enriches the logging context with the authenticated caller and
// exposes the caller's id to packages that must not import auth. Mount it
// after session authentication.
func UserContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := auth.UserFromContext(r.Context()); ok && user != nil {
			ctx := internal.ContextWithUserID(r.Context(), user.ID)
			ctx = logger.With(ctx, "userID", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		next.ServeHTTP(w, r)
	})
}
