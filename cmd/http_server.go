package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/develper21/MeterBeacon/internal"
	"github.com/develper21/MeterBeacon/internal/activity"
	activityPostgres "github.com/develper21/MeterBeacon/internal/activity/postgres"
	"github.com/develper21/MeterBeacon/internal/auth"
	authPostgres "github.com/develper21/MeterBeacon/internal/auth/postgres"
	"github.com/develper21/MeterBeacon/internal/core/events"
	"github.com/develper21/MeterBeacon/internal/tracker"
	trackerPostgres "github.com/develper21/MeterBeacon/internal/tracker/postgres"
	"github.com/develper21/MeterBeacon/internal/transport/rest"
	"github.com/develper21/MeterBeacon/internal/user"
	userPostgres "github.com/develper21/MeterBeacon/internal/user/postgres"
	"github.com/develper21/MeterBeacon/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config          *internal.Config
	DB              *sqlx.DB
	GormDB          *gorm.DB
	Router          *chi.Mux
	Logger          *slog.Logger
	EventBus        *events.EventBus
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	TrackerHandler  *tracker.Handler
	ActivityHandler *activity.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.AuthService,
		deps.UserHandler,
		deps.TrackerHandler,
		deps.ActivityHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// Credential subsystem
	issuer := auth.NewIssuer(
		config.Security.JWTSecret,
		config.Security.SessionTokenTTL,
		config.Security.DeviceTTL(),
		config.Security.APIKeyLifetime(),
	)
	verifier := auth.NewVerifier(config.Security.JWTSecret)
	catalog := auth.DefaultCatalog()
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, issuer, verifier, catalog, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	// Users
	userRepo := userPostgres.NewUserRepository(db)
	userService := user.NewService(userRepo, catalog)
	userHandler := user.NewHandler(userService)

	// Trackers
	trackerRepo := trackerPostgres.NewTrackerRepository(gormDB)
	trackerService := tracker.NewService(trackerRepo, eventBus, lg)
	trackerHandler := tracker.NewHandler(trackerService)

	// Activity feed, fed by tracker events
	activityRepo := activityPostgres.NewActivityRepository(gormDB)
	activityService := activity.NewService(activityRepo, lg)
	activityService.RegisterEventHandlers(eventBus)
	activityHandler := activity.NewHandler(activityService)

	return &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		EventBus:        eventBus,
		AuthService:     authService,
		AuthHandler:     authHandler,
		UserHandler:     userHandler,
		TrackerHandler:  trackerHandler,
		ActivityHandler: activityHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGormDB layers GORM over the existing pgx connection pool so both data
// access styles share one pool.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}
