// Package maintenance предоставляет маршруты и сборку HTTP-приложения
// планировщика обслуживания.
package maintenance

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/glassrain/maintenance/internal/http/handlers/maintenance/complete"
	"github.com/glassrain/maintenance/internal/http/handlers/maintenance/create"
	"github.com/glassrain/maintenance/internal/http/handlers/maintenance/health"
	"github.com/glassrain/maintenance/internal/http/handlers/maintenance/history"
	"github.com/glassrain/maintenance/internal/http/handlers/maintenance/upcoming"
	"github.com/glassrain/maintenance/internal/http/middlewarectx"
	scheduleservice "github.com/glassrain/maintenance/internal/services/schedule"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, scheduleService *scheduleservice.ScheduleService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, rate.Limit(10), 20))
			r.Post("/maintenance/schedule", create.New(logger, scheduleService).ServeHTTP)
			r.Get("/maintenance/upcoming/{user_id}", upcoming.New(logger, scheduleService).ServeHTTP)
			r.Get("/maintenance/history/{user_id}", history.New(logger, scheduleService).ServeHTTP)
			r.Post("/maintenance/complete/{schedule_id}", complete.New(logger, scheduleService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
