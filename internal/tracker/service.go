package tracker

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/develper21/MeterBeacon/internal"
	"github.com/develper21/MeterBeacon/internal/core/events"
)

// Repository defines the data access methods for trackers.
type Repository interface {
	Create(tracker *Tracker) error
	GetByID(id int64) (*Tracker, error)
	GetByDeviceID(deviceID string) (*Tracker, error)
	GetAll(status string, limit, offset int) ([]*Tracker, int64, error)
	Update(tracker *Tracker) error
	Delete(id int64) error
	Stats() (*Stats, error)
}

// Service handles tracker business logic: dashboard CRUD plus the ingestion
// path used by field hardware.
type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateTracker registers a new tracker from the dashboard. Duplicate device
// ids are rejected.
func (s *Service) CreateTracker(dto CreateTrackerDTO) (*Tracker, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("tracker validation failed", "error", err, "device_id", dto.DeviceID)
		return nil, err
	}

	if existing, err := s.repo.GetByDeviceID(dto.DeviceID); err == nil && existing != nil {
		s.logger.Warn("duplicate tracker registration", "device_id", dto.DeviceID)
		return nil, errors.ErrDuplicateTracker
	}

	t := NewTracker(dto)
	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create tracker", "error", err, "device_id", dto.DeviceID)
		return nil, err
	}

	s.logger.Info("tracker created",
		"tracker_id", t.ID,
		"device_id", t.DeviceID,
		"status", t.Status)

	return t, nil
}

// GetTrackerByID retrieves a single tracker.
func (s *Service) GetTrackerByID(id int64) (*Tracker, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Warn("tracker lookup failed", "error", err, "tracker_id", id)
		return nil, errors.ErrTrackerNotFound
	}
	return t, nil
}

// ListTrackers returns a page of trackers with an optional status filter.
func (s *Service) ListTrackers(status string, limit, offset int) ([]*Tracker, int64, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, errors.NewValidationError("invalid tracker status", errors.ErrCodeInvalidStatus)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	trackers, total, err := s.repo.GetAll(status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list trackers", "error", err)
		return nil, 0, err
	}
	return trackers, total, nil
}

// PatchTracker applies dashboard edits (status, assignment, routing).
func (s *Service) PatchTracker(id int64, dto PatchTrackerDTO) (*Tracker, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, errors.ErrTrackerNotFound
	}

	previousStatus := t.Status
	if dto.Status != nil {
		t.Status = *dto.Status
	}
	if dto.MeterID != nil {
		t.MeterID = *dto.MeterID
	}
	if dto.AssignedTo != nil {
		t.AssignedTo = dto.AssignedTo
	}
	if dto.Warehouse != nil {
		t.Warehouse = dto.Warehouse
	}
	if dto.Route != nil {
		t.Route = dto.Route
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(t); err != nil {
		s.logger.Error("failed to update tracker", "error", err, "tracker_id", id)
		return nil, err
	}

	if dto.Status != nil && previousStatus != t.Status {
		s.publish(events.NewTrackerStatusChanged(t.DeviceID, previousStatus, t.Status))
	}

	return t, nil
}

// DeleteTracker removes a tracker record.
func (s *Service) DeleteTracker(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return errors.ErrTrackerNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete tracker", "error", err, "tracker_id", id)
		return err
	}
	s.logger.Info("tracker deleted", "tracker_id", id)
	return nil
}

// Ingest processes a location/battery report from field hardware, creating
// the tracker on first contact and updating it afterwards. Status changes and
// battery threshold crossings go out on the event bus.
func (s *Service) Ingest(dto UpdateReportDTO) (*Tracker, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("ingest validation failed", "error", err, "device_id", dto.DeviceID)
		return nil, err
	}

	t, err := s.repo.GetByDeviceID(dto.DeviceID)
	if err != nil || t == nil {
		t = NewTracker(CreateTrackerDTO{
			DeviceID:     dto.DeviceID,
			MeterID:      dto.MeterID,
			Latitude:     dto.Latitude,
			Longitude:    dto.Longitude,
			BatteryLevel: dto.BatteryLevel,
			Status:       dto.Status,
		})
		if err := s.repo.Create(t); err != nil {
			s.logger.Error("failed to register tracker from report", "error", err, "device_id", dto.DeviceID)
			return nil, err
		}
		s.logger.Info("tracker registered from first report", "device_id", dto.DeviceID)
	} else {
		previousStatus := t.Status
		previousBattery := t.BatteryLevel
		t.ApplyUpdate(dto)

		if err := s.repo.Update(t); err != nil {
			s.logger.Error("failed to apply tracker report", "error", err, "device_id", dto.DeviceID)
			return nil, err
		}

		if previousStatus != t.Status {
			s.publish(events.NewTrackerStatusChanged(t.DeviceID, previousStatus, t.Status))
		}
		s.publishBatteryAlert(t, previousBattery)
	}

	s.publish(events.NewTrackerUpdated(t.DeviceID, t.Latitude, t.Longitude, t.BatteryLevel))

	return t, nil
}

// GetStats summarizes the fleet for the dashboard.
func (s *Service) GetStats() (*Stats, error) {
	stats, err := s.repo.Stats()
	if err != nil {
		s.logger.Error("failed to compute tracker stats", "error", err)
		return nil, err
	}
	return stats, nil
}

// publishBatteryAlert emits an alert only when a threshold is crossed
// downward, so a device draining slowly does not alert on every report.
func (s *Service) publishBatteryAlert(t *Tracker, previousBattery int) {
	switch {
	case t.CriticalBattery() && previousBattery >= CriticalBatteryThreshold:
		s.publish(events.NewBatteryAlert(t.DeviceID, t.BatteryLevel, "critical"))
	case t.LowBattery() && previousBattery >= LowBatteryThreshold:
		s.publish(events.NewBatteryAlert(t.DeviceID, t.BatteryLevel, "low"))
	}
}

func (s *Service) publish(event events.BaseEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
