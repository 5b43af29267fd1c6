package postgres

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/develper21/MeterBeacon/internal/tracker"
)

func TestTrackerRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TrackerRepository Suite")
}

var _ = Describe("TrackerRepository", func() {
	var (
		db   *gorm.DB
		repo tracker.Repository
	)

	newTracker := func(deviceID, status string, battery int) *tracker.Tracker {
		return tracker.NewTracker(tracker.CreateTrackerDTO{
			DeviceID:     deviceID,
			Latitude:     28.6139,
			Longitude:    77.2090,
			BatteryLevel: battery,
			Status:       status,
		})
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.Exec(`CREATE TABLE trackers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			device_id TEXT NOT NULL UNIQUE,
			meter_id TEXT NOT NULL DEFAULT '',
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			battery_level INTEGER NOT NULL DEFAULT 100,
			status TEXT NOT NULL DEFAULT 'in_storage',
			assigned_to TEXT,
			warehouse TEXT,
			route TEXT,
			last_updated DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error
		Expect(err).NotTo(HaveOccurred())

		repo = NewTrackerRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should persist a tracker and assign an id", func() {
			t := newTracker("TRK-001", tracker.StatusInStorage, 90)

			err := repo.Create(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.ID).NotTo(BeZero())
		})

		It("should reject a duplicate device id", func() {
			Expect(repo.Create(newTracker("TRK-001", tracker.StatusInStorage, 90))).To(Succeed())
			Expect(repo.Create(newTracker("TRK-001", tracker.StatusInTransit, 40))).NotTo(Succeed())
		})
	})

	Describe("GetByDeviceID", func() {
		It("should find a tracker by its hardware id", func() {
			created := newTracker("TRK-002", tracker.StatusInTransit, 55)
			Expect(repo.Create(created)).To(Succeed())

			found, err := repo.GetByDeviceID("TRK-002")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(created.ID))
			Expect(found.Status).To(Equal(tracker.StatusInTransit))
		})

		It("should return an error for an unknown device", func() {
			_, err := repo.GetByDeviceID("TRK-999")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAll", func() {
		BeforeEach(func() {
			Expect(repo.Create(newTracker("TRK-001", tracker.StatusInStorage, 90))).To(Succeed())
			Expect(repo.Create(newTracker("TRK-002", tracker.StatusInTransit, 50))).To(Succeed())
			Expect(repo.Create(newTracker("TRK-003", tracker.StatusInTransit, 15))).To(Succeed())
		})

		It("should return everything with the unfiltered total", func() {
			trackers, total, err := repo.GetAll("", 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(trackers).To(HaveLen(3))
			Expect(total).To(Equal(int64(3)))
		})

		It("should filter by status", func() {
			trackers, total, err := repo.GetAll(tracker.StatusInTransit, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(trackers).To(HaveLen(2))
			Expect(total).To(Equal(int64(2)))
		})

		It("should paginate while keeping the full total", func() {
			trackers, total, err := repo.GetAll("", 2, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(trackers).To(HaveLen(2))
			Expect(total).To(Equal(int64(3)))
		})
	})

	Describe("Update", func() {
		It("should persist field changes", func() {
			t := newTracker("TRK-004", tracker.StatusInStorage, 70)
			Expect(repo.Create(t)).To(Succeed())

			t.Status = tracker.StatusInstalledOff
			t.BatteryLevel = 65
			Expect(repo.Update(t)).To(Succeed())

			found, err := repo.GetByID(t.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Status).To(Equal(tracker.StatusInstalledOff))
			Expect(found.BatteryLevel).To(Equal(65))
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			t := newTracker("TRK-005", tracker.StatusInStorage, 70)
			Expect(repo.Create(t)).To(Succeed())

			Expect(repo.Delete(t.ID)).To(Succeed())

			_, err := repo.GetByID(t.ID)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Stats", func() {
		It("should aggregate totals, status counts and battery buckets", func() {
			Expect(repo.Create(newTracker("TRK-001", tracker.StatusInstalledOff, 90))).To(Succeed())
			Expect(repo.Create(newTracker("TRK-002", tracker.StatusInTransit, 15))).To(Succeed())
			Expect(repo.Create(newTracker("TRK-003", tracker.StatusInTransit, 5))).To(Succeed())

			stats, err := repo.Stats()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(Equal(int64(3)))
			Expect(stats.ByStatus[tracker.StatusInTransit]).To(Equal(int64(2)))
			Expect(stats.LowBattery).To(Equal(int64(2)))
			Expect(stats.CriticalBattery).To(Equal(int64(1)))
			Expect(stats.AverageBattery).To(BeNumerically("~", 36.67, 0.1))
		})

		It("should handle an empty fleet", func() {
			stats, err := repo.Stats()
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Total).To(BeZero())
			Expect(stats.AverageBattery).To(BeZero())
		})
	})
})
