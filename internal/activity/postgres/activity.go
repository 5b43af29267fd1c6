package postgres

import (
	"gorm.io/gorm"

	"github.com/develper21/MeterBeacon/internal/activity"
	activityDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/activity"
)

// ActivityRepository implements the activity.Repository interface using GORM
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *gorm.DB) activity.Repository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(a *activity.Activity) error {
	return r.db.Create(activity.ToDataModel(a)).Error
}

func (r *ActivityRepository) GetRecent(deviceID string, limit int) ([]*activity.Activity, error) {
	query := r.db.Model(&activityDatamodel.Activity{})
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}

	var models []*activityDatamodel.Activity
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	return activity.FromDataModelSlice(models), nil
}
