package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/develper21/MeterBeacon/internal/transport"
	"github.com/develper21/MeterBeacon/pkg/logger"
)

// ServiceAPI defines the activity feed operations the HTTP layer depends on.
type ServiceAPI interface {
	GetRecent(deviceID string, limit int) ([]*Activity, error)
}

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

// GetRecent handles GET /activities for the dashboard feed.
func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	activities, err := h.Service.GetRecent(q.Get("device_id"), limit)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
	})
}
