package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/develper21/MeterBeacon/internal/activity"
	activityPostgres "github.com/develper21/MeterBeacon/internal/activity/postgres"
	"github.com/develper21/MeterBeacon/internal/core/events"
	"github.com/develper21/MeterBeacon/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start worker processes",
	Long:  `Start and manage background workers like the activity feed recorder.`,
}

// Activity worker command
var activityWorkerCmd = &cobra.Command{
	Use:   "activity",
	Short: "Start the activity feed worker",
	Long:  `Start a standalone worker that records tracker events into the activity feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		startActivityWorker()
	},
}

func startActivityWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		log.Fatalf("failed to init orm: %v", err)
	}

	eventBus := events.NewEventBus(lg)

	activityRepo := activityPostgres.NewActivityRepository(gormDB)
	activityService := activity.NewService(activityRepo, lg)
	activityService.RegisterEventHandlers(eventBus)

	lg.Info("activity worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("activity worker is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down activity worker", "signal", sig)

	if err := db.Close(); err != nil {
		lg.Error("database close error", "error", err)
	}
	lg.Info("activity worker shutdown complete")
}

func init() {
	workerCmd.AddCommand(activityWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
