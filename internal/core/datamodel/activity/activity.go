package activity

import "time"

// Activity is the persistence model for the activities table.
type Activity struct {
	ID        string    `gorm:"primaryKey" db:"id"`
	Type      string    `gorm:"column:type;not null" db:"type"`
	DeviceID  string    `gorm:"column:device_id;index" db:"device_id"`
	Message   string    `gorm:"column:message;not null" db:"message"`
	CreatedAt time.Time `gorm:"column:created_at" db:"created_at"`
}

func (Activity) TableName() string {
	return "activities"
}
