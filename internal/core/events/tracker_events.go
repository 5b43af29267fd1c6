package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TrackerUpdatedEvent       = "tracker.updated"
	TrackerStatusChangedEvent = "tracker.status_changed"
	BatteryAlertEvent         = "tracker.battery_alert"
)

// NewTrackerUpdated records a location/battery report from field hardware.
func NewTrackerUpdated(deviceID string, latitude, longitude float64, batteryLevel int) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TrackerUpdatedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"device_id":     deviceID,
			"latitude":      latitude,
			"longitude":     longitude,
			"battery_level": batteryLevel,
		},
	}
}

// NewTrackerStatusChanged records a lifecycle transition, e.g. in_transit to
// installed_off.
func NewTrackerStatusChanged(deviceID, fromStatus, toStatus string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TrackerStatusChangedEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"device_id":   deviceID,
			"from_status": fromStatus,
			"to_status":   toStatus,
		},
	}
}

// NewBatteryAlert records a low or critical battery crossing.
func NewBatteryAlert(deviceID string, batteryLevel int, severity string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      BatteryAlertEvent,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"device_id":     deviceID,
			"battery_level": batteryLevel,
			"severity":      severity,
		},
	}
}
