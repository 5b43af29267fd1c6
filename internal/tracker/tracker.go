package tracker

import (
	"time"

	trackerDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/tracker"
)

type Tracker struct {
	ID           int64     `json:"id"`
	DeviceID     string    `json:"device_id"`
	MeterID      string    `json:"meter_id,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	BatteryLevel int       `json:"battery_level"`
	Status       string    `json:"status"`
	AssignedTo   *string   `json:"assigned_to,omitempty"`
	Warehouse    *string   `json:"warehouse,omitempty"`
	Route        *string   `json:"route,omitempty"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const (
	StatusInStorage    = "in_storage"
	StatusInTransit    = "in_transit"
	StatusInstalledOff = "installed_off"
	StatusDetached     = "detached"

	LowBatteryThreshold      = 20
	CriticalBatteryThreshold = 10
)

func ValidStatus(status string) bool {
	switch status {
	case StatusInStorage, StatusInTransit, StatusInstalledOff, StatusDetached:
		return true
	}
	return false
}

func (t *Tracker) LowBattery() bool {
	return t.BatteryLevel < LowBatteryThreshold
}

func (t *Tracker) CriticalBattery() bool {
	return t.BatteryLevel < CriticalBatteryThreshold
}

// ApplyUpdate merges an ingestion report into the tracker. Status and meter
// id only change when the report carries them.
func (t *Tracker) ApplyUpdate(dto UpdateReportDTO) {
	t.Latitude = dto.Latitude
	t.Longitude = dto.Longitude
	t.BatteryLevel = dto.BatteryLevel
	if dto.Status != "" {
		t.Status = dto.Status
	}
	if dto.MeterID != nil {
		t.MeterID = *dto.MeterID
	}
	now := time.Now()
	t.LastUpdated = now
	t.UpdatedAt = now
}

func NewTracker(dto CreateTrackerDTO) *Tracker {
	now := time.Now()

	status := dto.Status
	if status == "" {
		status = StatusInStorage
	}

	tracker := &Tracker{
		DeviceID:     dto.DeviceID,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		BatteryLevel: dto.BatteryLevel,
		Status:       status,
		AssignedTo:   dto.AssignedTo,
		Warehouse:    dto.Warehouse,
		Route:        dto.Route,
		LastUpdated:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dto.MeterID != nil {
		tracker.MeterID = *dto.MeterID
	}

	return tracker
}

// Stats summarizes the fleet for the dashboard.
type Stats struct {
	Total           int64            `json:"total"`
	ByStatus        map[string]int64 `json:"by_status"`
	LowBattery      int64            `json:"low_battery"`
	CriticalBattery int64            `json:"critical_battery"`
	AverageBattery  float64          `json:"average_battery"`
}

func ToDataModel(t *Tracker) *trackerDatamodel.Tracker {
	return &trackerDatamodel.Tracker{
		ID:           t.ID,
		DeviceID:     t.DeviceID,
		MeterID:      t.MeterID,
		Latitude:     t.Latitude,
		Longitude:    t.Longitude,
		BatteryLevel: t.BatteryLevel,
		Status:       t.Status,
		AssignedTo:   t.AssignedTo,
		Warehouse:    t.Warehouse,
		Route:        t.Route,
		LastUpdated:  t.LastUpdated,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func FromDataModel(t *trackerDatamodel.Tracker) *Tracker {
	return &Tracker{
		ID:           t.ID,
		DeviceID:     t.DeviceID,
		MeterID:      t.MeterID,
		Latitude:     t.Latitude,
		Longitude:    t.Longitude,
		BatteryLevel: t.BatteryLevel,
		Status:       t.Status,
		AssignedTo:   t.AssignedTo,
		Warehouse:    t.Warehouse,
		Route:        t.Route,
		LastUpdated:  t.LastUpdated,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func FromDataModelSlice(trackers []*trackerDatamodel.Tracker) []*Tracker {
	result := make([]*Tracker, len(trackers))
	for i, t := range trackers {
		result[i] = FromDataModel(t)
	}
	return result
}
