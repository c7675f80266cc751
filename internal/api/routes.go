package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zapponejosh/devotions-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware)

	// Public routes
	r.Get("/health", handlers.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/day/today", handlers.GetToday)
		r.Get("/day/{date}", handlers.GetDay)
		r.Get("/calendar", handlers.GetCalendarMonth)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))

			r.Get("/reminders", handlers.ListReminders)
			r.Post("/reminders", handlers.CreateReminder)
			r.Delete("/reminders/{id}", handlers.DeleteReminder)

			r.Post("/completions", handlers.RecordCompletion)
			r.Get("/streak", handlers.GetStreak)
		})
	})

	return r
}
