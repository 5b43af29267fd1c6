package tracker

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/develper21/MeterBeacon/internal"
	"github.com/develper21/MeterBeacon/internal/transport"
	"github.com/develper21/MeterBeacon/pkg/logger"
)

// ServiceAPI defines the tracker operations the HTTP layer depends on.
type ServiceAPI interface {
	CreateTracker(dto CreateTrackerDTO) (*Tracker, error)
	GetTrackerByID(id int64) (*Tracker, error)
	ListTrackers(status string, limit, offset int) ([]*Tracker, int64, error)
	PatchTracker(id int64, dto PatchTrackerDTO) (*Tracker, error)
	DeleteTracker(id int64) error
	Ingest(dto UpdateReportDTO) (*Tracker, error)
	GetStats() (*Stats, error)
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

func (h *Handler) CreateTracker(w http.ResponseWriter, r *http.Request) {
	var dto CreateTrackerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTracker(dto)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.Logger.Info("tracker registered",
		"device_id", t.DeviceID,
		"actor", errors.UserIDFromContext(r.Context()))
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) GetTracker(w http.ResponseWriter, r *http.Request) {
	id, err := h.trackerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tracker id")
		return
	}

	t, err := h.Service.GetTrackerByID(id)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ListTrackers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	trackers, total, err := h.Service.ListTrackers(q.Get("status"), limit, offset)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"trackers": trackers,
		"total":    total,
		"has_more": int64(offset+len(trackers)) < total,
	})
}

func (h *Handler) PatchTracker(w http.ResponseWriter, r *http.Request) {
	id, err := h.trackerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tracker id")
		return
	}

	var dto PatchTrackerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.PatchTracker(id, dto)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTracker(w http.ResponseWriter, r *http.Request) {
	id, err := h.trackerID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid tracker id")
		return
	}

	if err := h.Service.DeleteTracker(id); err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.Logger.Info("tracker deleted",
		"tracker_id", id,
		"actor", errors.UserIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// Ingest handles POST /trackers/update from field hardware. The route sits
// behind device token authentication.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var dto UpdateReportDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.Ingest(dto)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStats()
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) trackerID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) writeTrackerError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	switch {
	case stderrors.Is(err, errors.ErrTrackerNotFound):
		h.WriteError(w, http.StatusNotFound, "tracker not found")
	case stderrors.Is(err, errors.ErrDuplicateTracker):
		h.WriteError(w, http.StatusConflict, "tracker already registered")
	case stderrors.As(err, &appErr):
		h.WriteError(w, appErr.StatusCode, appErr.GetDetailedMessage())
	default:
		h.Logger.Error("tracker operation failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
