package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/develper21/MeterBeacon/pkg/logger"
)

// RequestID honors an inbound X-Trace-ID or mints one, stamps it on the
// response, and threads it through the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		w.Header().Set("X-Trace-ID", traceID)

		ctx := logger.With(r.Context(), "traceID", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
