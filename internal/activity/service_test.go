package activity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/develper21/MeterBeacon/internal/core/events"
)

func TestActivity(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Activity Module Suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Mock Repository for testing
type mockRepository struct {
	recorded   []*Activity
	failCreate bool
}

func (m *mockRepository) Create(a *Activity) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	m.recorded = append(m.recorded, a)
	return nil
}

func (m *mockRepository) GetRecent(deviceID string, limit int) ([]*Activity, error) {
	var result []*Activity
	for _, a := range m.recorded {
		if deviceID == "" || a.DeviceID == deviceID {
			result = append(result, a)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

var _ = ginkgo.Describe("ActivityService", func() {
	var (
		service *Service
		repo    *mockRepository
	)

	ginkgo.BeforeEach(func() {
		repo = &mockRepository{}
		service = NewService(repo, discardLogger())
	})

	ginkgo.Describe("event handling", func() {
		ginkgo.It("should record a location update", func() {
			event := events.NewTrackerUpdated("TRK-001", 28.6139, 77.2090, 85)

			err := service.HandleTrackerUpdated(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(repo.recorded).To(gomega.HaveLen(1))
			entry := repo.recorded[0]
			gomega.Expect(entry.Type).To(gomega.Equal(TypeLocationUpdate))
			gomega.Expect(entry.DeviceID).To(gomega.Equal("TRK-001"))
			gomega.Expect(entry.ID).ToNot(gomega.BeEmpty())
			gomega.Expect(entry.CreatedAt).ToNot(gomega.BeZero())
		})

		ginkgo.It("should record a status change with both states in the message", func() {
			event := events.NewTrackerStatusChanged("TRK-002", "in_storage", "in_transit")

			err := service.HandleStatusChanged(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			entry := repo.recorded[0]
			gomega.Expect(entry.Type).To(gomega.Equal(TypeStatusChange))
			gomega.Expect(entry.Message).To(gomega.ContainSubstring("in_storage"))
			gomega.Expect(entry.Message).To(gomega.ContainSubstring("in_transit"))
		})

		ginkgo.It("should record a battery alert with its severity", func() {
			event := events.NewBatteryAlert("TRK-003", 8, "critical")

			err := service.HandleBatteryAlert(context.Background(), event)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			entry := repo.recorded[0]
			gomega.Expect(entry.Type).To(gomega.Equal(TypeBatteryAlert))
			gomega.Expect(entry.Message).To(gomega.ContainSubstring("critical"))
		})

		ginkgo.It("should propagate repository failures so the bus can log them", func() {
			repo.failCreate = true

			err := service.HandleTrackerUpdated(context.Background(), events.NewTrackerUpdated("TRK-001", 0, 0, 50))
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("GetRecent", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(service.HandleTrackerUpdated(context.Background(), events.NewTrackerUpdated("TRK-001", 1, 1, 50))).To(gomega.Succeed())
			gomega.Expect(service.HandleTrackerUpdated(context.Background(), events.NewTrackerUpdated("TRK-002", 2, 2, 60))).To(gomega.Succeed())
		})

		ginkgo.It("should filter by device id", func() {
			activities, err := service.GetRecent("TRK-002", 10)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(activities).To(gomega.HaveLen(1))
			gomega.Expect(activities[0].DeviceID).To(gomega.Equal("TRK-002"))
		})

		ginkgo.It("should apply a sane default limit", func() {
			activities, err := service.GetRecent("", 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(activities).To(gomega.HaveLen(2))
		})
	})
})
