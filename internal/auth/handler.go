package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/develper21/MeterBeacon/internal/transport"
	"github.com/develper21/MeterBeacon/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "error", err)

		switch {
		case errors.Is(err, ErrInvalidCredentials):
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, ErrUserInactive):
			h.WriteError(w, http.StatusUnauthorized, "user is inactive")
		default:
			var verr ValidationError
			if errors.As(err, &verr) {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

// Logout validates the presented session and acknowledges sign-out. Sessions
// are self-contained, so there is no server-side state to clear.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.VerifySession(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IssueDeviceToken handles POST /auth/device-tokens for provisioning field
// hardware. The route is gated by the manage_devices permission.
func (h *Handler) IssueDeviceToken(w http.ResponseWriter, r *http.Request) {
	var dto DeviceTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.IssueDeviceToken(dto)
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("device token issuance failed", "error", err, "device_id", dto.DeviceID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"device_id": dto.DeviceID,
		"token":     token,
	})
}

// IssueAPIKey handles POST /auth/api-keys. The route is gated by the
// system_config permission.
func (h *Handler) IssueAPIKey(w http.ResponseWriter, r *http.Request) {
	var dto APIKeyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	key, err := h.Service.IssueAPIKey(dto)
	if err != nil {
		var verr ValidationError
		if errors.As(err, &verr) {
			h.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("api key issuance failed", "error", err, "user_id", dto.UserID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]string{
		"user_id": dto.UserID,
		"api_key": key,
	})
}

// AuthMiddleware verifies a session bearer token and places the caller's
// identity in the request context. Role and organization travel inside the
// claims, so no directory lookup happens per request.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.VerifySession(token)
		if err != nil {
			h.Logger.Warn("session verification failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user := &User{
			ID:           claims.Subject,
			Role:         claims.Role,
			Organization: claims.Organization,
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// DeviceAuthMiddleware verifies a device bearer token for the ingestion
// endpoint. A session or API-key credential presented here is rejected as the
// wrong kind, never accepted with partial claims.
func (h *Handler) DeviceAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing device token")
			return
		}

		claims, err := h.Service.VerifyDeviceToken(token)
		if err != nil {
			h.Logger.Warn("device token verification failed", "error", err)
			if errors.Is(err, ErrWrongCredentialKind) {
				h.WriteError(w, http.StatusForbidden, "device token required")
				return
			}
			h.WriteError(w, http.StatusUnauthorized, "invalid device token")
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithDevice(r.Context(), claims.Subject)))
	})
}

// APIKeyMiddleware authenticates external integrations via the X-API-Key
// header. Authorization uses the key's embedded permission snapshot, not the
// live catalog.
func (h *Handler) APIKeyMiddleware(required Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				h.WriteError(w, http.StatusUnauthorized, "missing api key")
				return
			}

			claims, err := h.Service.VerifyAPIKey(key)
			if err != nil {
				h.Logger.Warn("api key verification failed", "error", err)
				h.WriteError(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			if !claims.HasPermission(required) {
				h.Logger.Warn("api key lacks required permission",
					"user_id", claims.Subject,
					"required_permission", required)
				h.WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithAPIKeyClaims(r.Context(), claims)))
		})
	}
}
