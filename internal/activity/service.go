package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/develper21/MeterBeacon/internal/core/events"
)

// Repository defines the data access methods for the activity feed.
type Repository interface {
	Create(activity *Activity) error
	GetRecent(deviceID string, limit int) ([]*Activity, error)
}

// Service records tracker events into the activity feed and serves the
// dashboard's recent-activity view.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetRecent returns the newest feed entries, optionally scoped to one device.
func (s *Service) GetRecent(deviceID string, limit int) ([]*Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	activities, err := s.repo.GetRecent(deviceID, limit)
	if err != nil {
		s.logger.Error("failed to load activity feed", "error", err)
		return nil, err
	}
	return activities, nil
}

// RegisterEventHandlers subscribes the feed recorder to tracker events.
func (s *Service) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.TrackerUpdatedEvent, s.HandleTrackerUpdated)
	eventBus.Subscribe(events.TrackerStatusChangedEvent, s.HandleStatusChanged)
	eventBus.Subscribe(events.BatteryAlertEvent, s.HandleBatteryAlert)

	s.logger.Info("activity event handlers registered",
		"handlers", []string{
			events.TrackerUpdatedEvent,
			events.TrackerStatusChangedEvent,
			events.BatteryAlertEvent,
		})
}

func (s *Service) HandleTrackerUpdated(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s event", event.EventType())
	}

	deviceID, _ := data["device_id"].(string)
	return s.record(&Activity{
		Type:     TypeLocationUpdate,
		DeviceID: deviceID,
		Message:  fmt.Sprintf("Device %s reported location %.5f, %.5f", deviceID, data["latitude"], data["longitude"]),
	})
}

func (s *Service) HandleStatusChanged(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s event", event.EventType())
	}

	deviceID, _ := data["device_id"].(string)
	return s.record(&Activity{
		Type:     TypeStatusChange,
		DeviceID: deviceID,
		Message:  fmt.Sprintf("Device %s changed status from %v to %v", deviceID, data["from_status"], data["to_status"]),
	})
}

func (s *Service) HandleBatteryAlert(ctx context.Context, event events.Event) error {
	data, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload for %s event", event.EventType())
	}

	deviceID, _ := data["device_id"].(string)
	return s.record(&Activity{
		Type:     TypeBatteryAlert,
		DeviceID: deviceID,
		Message:  fmt.Sprintf("Device %s battery %v%% (%v)", deviceID, data["battery_level"], data["severity"]),
	})
}

func (s *Service) record(a *Activity) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()

	if err := s.repo.Create(a); err != nil {
		s.logger.Error("failed to record activity",
			"error", err,
			"activity_type", a.Type,
			"device_id", a.DeviceID)
		return err
	}
	return nil
}
