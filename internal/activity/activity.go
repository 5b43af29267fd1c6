package activity

import (
	"time"

	activityDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/activity"
)

// Activity is a single entry in the dashboard feed.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	DeviceID  string    `json:"device_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	TypeLocationUpdate = "location_update"
	TypeStatusChange   = "status_change"
	TypeBatteryAlert   = "battery_alert"
)

func ToDataModel(a *Activity) *activityDatamodel.Activity {
	return &activityDatamodel.Activity{
		ID:        a.ID,
		Type:      a.Type,
		DeviceID:  a.DeviceID,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModel(a *activityDatamodel.Activity) *Activity {
	return &Activity{
		ID:        a.ID,
		Type:      a.Type,
		DeviceID:  a.DeviceID,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func FromDataModelSlice(activities []*activityDatamodel.Activity) []*Activity {
	result := make([]*Activity, len(activities))
	for i, a := range activities {
		result[i] = FromDataModel(a)
	}
	return result
}
