package tracker

import (
	errors "github.com/develper21/MeterBeacon/internal"
	"github.com/develper21/MeterBeacon/internal/core/common/validation"
)

// CreateTrackerDTO is the transport shape for registering a tracker from the
// dashboard.
type CreateTrackerDTO struct {
	DeviceID     string  `json:"device_id"`
	MeterID      *string `json:"meter_id,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	BatteryLevel int     `json:"battery_level"`
	Status       string  `json:"status,omitempty"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	Warehouse    *string `json:"warehouse,omitempty"`
	Route        *string `json:"route,omitempty"`
}

// UpdateReportDTO is the ingestion payload sent by field hardware.
type UpdateReportDTO struct {
	DeviceID     string  `json:"device_id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	BatteryLevel int     `json:"battery_level"`
	Status       string  `json:"status,omitempty"`
	MeterID      *string `json:"meter_id,omitempty"`
}

// PatchTrackerDTO carries dashboard edits; nil fields stay unchanged.
type PatchTrackerDTO struct {
	Status     *string `json:"status,omitempty"`
	MeterID    *string `json:"meter_id,omitempty"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	Warehouse  *string `json:"warehouse,omitempty"`
	Route      *string `json:"route,omitempty"`
}

func (d CreateTrackerDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("device_id", d.DeviceID).Required()
	v.Field("latitude", d.Latitude).LatitudeRange()
	v.Field("longitude", d.Longitude).LongitudeRange()
	v.Field("battery_level", int64(d.BatteryLevel)).BatteryRange()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Status != "" && !ValidStatus(d.Status) {
		return errors.NewValidationError("invalid tracker status", errors.ErrCodeInvalidStatus)
	}
	return nil
}

func (d UpdateReportDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("device_id", d.DeviceID).Required()
	v.Field("latitude", d.Latitude).LatitudeRange()
	v.Field("longitude", d.Longitude).LongitudeRange()
	v.Field("battery_level", int64(d.BatteryLevel)).BatteryRange()
	if err := v.Validate(); err != nil {
		return err
	}
	if d.Status != "" && !ValidStatus(d.Status) {
		return errors.NewValidationError("invalid tracker status", errors.ErrCodeInvalidStatus)
	}
	return nil
}

func (d PatchTrackerDTO) Validate() error {
	if d.Status != nil && !ValidStatus(*d.Status) {
		return errors.NewValidationError("invalid tracker status", errors.ErrCodeInvalidStatus)
	}
	return nil
}
