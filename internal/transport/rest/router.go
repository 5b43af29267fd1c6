package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/develper21/MeterBeacon/internal/activity"
	"github.com/develper21/MeterBeacon/internal/auth"
	"github.com/develper21/MeterBeacon/internal/tracker"
	"github.com/develper21/MeterBeacon/internal/transport/middleware"
	"github.com/develper21/MeterBeacon/internal/transport/swagger"
	"github.com/develper21/MeterBeacon/internal/user"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, authService *auth.Service, userHandler *user.Handler, trackerHandler *tracker.Handler, activityHandler *activity.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	rbac := auth.NewRBACAuthorization(authService.Gate(), logger)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		// Device ingestion route, authenticated by device token rather than a
		// dashboard session
		if trackerHandler != nil && authHandler != nil {
			r.Group(func(dr chi.Router) {
				dr.Use(authHandler.DeviceAuthMiddleware)
				dr.Post("/trackers/update", trackerHandler.Ingest)
			})
		}

		// External integration read route, authenticated by API key
		if trackerHandler != nil && authHandler != nil {
			r.Group(func(ir chi.Router) {
				ir.Use(authHandler.APIKeyMiddleware(auth.PermViewDashboard))
				ir.Get("/integrations/trackers", trackerHandler.ListTrackers)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Use(middleware.UserContext)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)

					pr.Group(func(ur chi.Router) {
						ur.Use(middleware.RequirePermissions(authService.Gate(), auth.PermViewUsers, auth.PermManageUsers))
						ur.Get("/users", userHandler.ListUsers)
					})
				}

				// Credential provisioning routes
				pr.Group(func(cr chi.Router) {
					cr.Use(rbac.RequireManageDevices())
					cr.Post("/auth/device-tokens", authHandler.IssueDeviceToken)
				})
				pr.Group(func(cr chi.Router) {
					cr.Use(rbac.RequireSystemConfig())
					cr.Post("/auth/api-keys", authHandler.IssueAPIKey)
				})

				// Tracker routes
				if trackerHandler != nil {
					pr.Route("/trackers", func(tr chi.Router) {
						tr.Group(func(sr chi.Router) {
							sr.Use(rbac.RequireViewAnalytics())
							sr.Get("/stats", trackerHandler.GetStats)
						})

						tr.Group(func(vr chi.Router) {
							vr.Use(rbac.RequireViewDashboard())
							vr.Get("/", trackerHandler.ListTrackers)
							vr.Get("/{id}", trackerHandler.GetTracker)
						})

						tr.Group(func(ar chi.Router) {
							ar.Use(rbac.RequireAddTracker())
							ar.Post("/", trackerHandler.CreateTracker)
						})

						tr.Group(func(er chi.Router) {
							er.Use(rbac.RequireEditTracker())
							er.Patch("/{id}", trackerHandler.PatchTracker)
						})

						tr.Group(func(dr chi.Router) {
							dr.Use(rbac.RequireDeleteTracker())
							dr.Delete("/{id}", trackerHandler.DeleteTracker)
						})
					})
				}

				// Activity feed
				if activityHandler != nil {
					pr.Group(func(ar chi.Router) {
						ar.Use(rbac.RequireViewDashboard())
						ar.Get("/activities", activityHandler.GetRecent)
					})
				}
			})
		}
	})
}
