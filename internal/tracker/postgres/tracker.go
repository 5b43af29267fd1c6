package postgres

import (
	"gorm.io/gorm"

	trackerDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/tracker"
	"github.com/develper21/MeterBeacon/internal/tracker"
)

// TrackerRepository implements the tracker.Repository interface using GORM
type TrackerRepository struct {
	db *gorm.DB
}

// NewTrackerRepository creates a new tracker repository
func NewTrackerRepository(db *gorm.DB) tracker.Repository {
	return &TrackerRepository{db: db}
}

func (r *TrackerRepository) Create(t *tracker.Tracker) error {
	model := tracker.ToDataModel(t)
	if err := r.db.Create(model).Error; err != nil {
		return err
	}
	t.ID = model.ID
	return nil
}

func (r *TrackerRepository) GetByID(id int64) (*tracker.Tracker, error) {
	var model trackerDatamodel.Tracker
	err := r.db.Where("id = ?", id).First(&model).Error
	if err != nil {
		return nil, err
	}
	return tracker.FromDataModel(&model), nil
}

func (r *TrackerRepository) GetByDeviceID(deviceID string) (*tracker.Tracker, error) {
	var model trackerDatamodel.Tracker
	err := r.db.Where("device_id = ?", deviceID).First(&model).Error
	if err != nil {
		return nil, err
	}
	return tracker.FromDataModel(&model), nil
}

// GetAll returns a page of trackers, newest reports first, with an optional
// status filter and the unpaged total for the dashboard.
func (r *TrackerRepository) GetAll(status string, limit, offset int) ([]*tracker.Tracker, int64, error) {
	query := r.db.Model(&trackerDatamodel.Tracker{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*trackerDatamodel.Tracker
	err := query.
		Order("last_updated DESC").
		Limit(limit).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	return tracker.FromDataModelSlice(models), total, nil
}

func (r *TrackerRepository) Update(t *tracker.Tracker) error {
	return r.db.Save(tracker.ToDataModel(t)).Error
}

func (r *TrackerRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&trackerDatamodel.Tracker{}).Error
}

// Stats aggregates fleet counts in a single pass plus one grouped query.
func (r *TrackerRepository) Stats() (*tracker.Stats, error) {
	stats := &tracker.Stats{
		ByStatus: make(map[string]int64),
	}

	type aggregate struct {
		Total           int64
		LowBattery      int64
		CriticalBattery int64
		AverageBattery  float64
	}
	var agg aggregate
	err := r.db.Model(&trackerDatamodel.Tracker{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN battery_level < ? THEN 1 ELSE 0 END), 0) AS low_battery, "+
				"COALESCE(SUM(CASE WHEN battery_level < ? THEN 1 ELSE 0 END), 0) AS critical_battery, "+
				"COALESCE(AVG(battery_level), 0) AS average_battery",
			tracker.LowBatteryThreshold, tracker.CriticalBatteryThreshold).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats.Total = agg.Total
	stats.LowBattery = agg.LowBattery
	stats.CriticalBattery = agg.CriticalBattery
	stats.AverageBattery = agg.AverageBattery

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	err = r.db.Model(&trackerDatamodel.Tracker{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.ByStatus[c.Status] = c.Count
	}

	return stats, nil
}
