package tracker

import "time"

// Tracker is the persistence model for the trackers table.
type Tracker struct {
	ID           int64     `gorm:"primaryKey" db:"id"`
	DeviceID     string    `gorm:"column:device_id;uniqueIndex;not null" db:"device_id"`
	MeterID      string    `gorm:"column:meter_id" db:"meter_id"`
	Latitude     float64   `gorm:"column:latitude;not null" db:"latitude"`
	Longitude    float64   `gorm:"column:longitude;not null" db:"longitude"`
	BatteryLevel int       `gorm:"column:battery_level;not null" db:"battery_level"`
	Status       string    `gorm:"column:status;not null;default:in_storage" db:"status"`
	AssignedTo   *string   `gorm:"column:assigned_to" db:"assigned_to"`
	Warehouse    *string   `gorm:"column:warehouse" db:"warehouse"`
	Route        *string   `gorm:"column:route" db:"route"`
	LastUpdated  time.Time `gorm:"column:last_updated" db:"last_updated"`
	CreatedAt    time.Time `gorm:"column:created_at" db:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" db:"updated_at"`
}

func (Tracker) TableName() string {
	return "trackers"
}
