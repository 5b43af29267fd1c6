package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	activityDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/activity"
	trackerDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/tracker"
	userDatamodel "github.com/develper21/MeterBeacon/internal/core/datamodel/user"
	"github.com/develper21/MeterBeacon/internal/tracker"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		gormDB, err := initGormDB(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"activities", "trackers", "users"} {
				if err := gormDB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		users := []userDatamodel.User{
			{Email: "admin@discom.com", Name: "Asha Verma", Role: "admin", Organization: "Northern DISCOM"},
			{Email: "manager@discom.com", Name: "Rajesh Kumar", Role: "manager", Organization: "Northern DISCOM"},
			{Email: "operator@discom.com", Name: "Priya Nair", Role: "operator", Organization: "Northern DISCOM"},
			{Email: "viewer@discom.com", Name: "Sunil Mehta", Role: "viewer", Organization: "Northern DISCOM"},
		}

		now := time.Now()
		for _, u := range users {
			var count int64
			gormDB.Model(&userDatamodel.User{}).Where("email = ?", u.Email).Count(&count)
			if count > 0 {
				fmt.Printf("User %s already exists, skipping\n", u.Email)
				continue
			}

			u.ID = uuid.NewString()
			u.PasswordHash = string(hash)
			u.IsActive = true
			u.CreatedAt = now
			u.UpdatedAt = now
			if err := gormDB.Create(&u).Error; err != nil {
				log.Fatalf("failed to seed user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", u.Email, u.Role)
		}

		warehouse := "Okhla Depot"
		route := "Route 12"
		trackers := []trackerDatamodel.Tracker{
			{DeviceID: "TRK-001", MeterID: "MTR-58291", Latitude: 28.6139, Longitude: 77.2090, BatteryLevel: 87, Status: tracker.StatusInstalledOff},
			{DeviceID: "TRK-002", MeterID: "MTR-58292", Latitude: 28.7041, Longitude: 77.1025, BatteryLevel: 45, Status: tracker.StatusInTransit, Route: &route},
			{DeviceID: "TRK-003", MeterID: "", Latitude: 28.5355, Longitude: 77.3910, BatteryLevel: 100, Status: tracker.StatusInStorage, Warehouse: &warehouse},
			{DeviceID: "TRK-004", MeterID: "MTR-58294", Latitude: 28.4595, Longitude: 77.0266, BatteryLevel: 15, Status: tracker.StatusInstalledOff},
			{DeviceID: "TRK-005", MeterID: "MTR-58295", Latitude: 28.6692, Longitude: 77.4538, BatteryLevel: 8, Status: tracker.StatusDetached},
		}

		for _, t := range trackers {
			var count int64
			gormDB.Model(&trackerDatamodel.Tracker{}).Where("device_id = ?", t.DeviceID).Count(&count)
			if count > 0 {
				fmt.Printf("Tracker %s already exists, skipping\n", t.DeviceID)
				continue
			}

			t.LastUpdated = now
			t.CreatedAt = now
			t.UpdatedAt = now
			if err := gormDB.Create(&t).Error; err != nil {
				log.Fatalf("failed to seed tracker %s: %v", t.DeviceID, err)
			}
			fmt.Printf("Seeded tracker: %s (%s)\n", t.DeviceID, t.Status)
		}

		seedActivity := activityDatamodel.Activity{
			ID:        uuid.NewString(),
			Type:      "status_change",
			DeviceID:  "TRK-002",
			Message:   "Device TRK-002 changed status from in_storage to in_transit",
			CreatedAt: now,
		}
		if err := gormDB.Create(&seedActivity).Error; err != nil {
			log.Fatalf("failed to seed activity: %v", err)
		}

		fmt.Println("Seed data loaded successfully")
	},
}
