package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/plastinin/aceinterview/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/aceinterview/internal/adapter/http/middleware"
	"github.com/plastinin/aceinterview/pkg/metrics"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает HTTP роутер
func NewRouter(
	sessionHandler *handler.SessionHandler,
	tipsHandler *handler.TipsHandler,
	healthHandler *handler.HealthHandler,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.NewLoggingMiddleware(logger))
	r.Use(httpmiddleware.Metrics)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// Вне версионирования API
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", metrics.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/analyses", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)
			r.Get("/{id}", sessionHandler.GetByID)
			r.Delete("/{id}", sessionHandler.Delete)
			r.Post("/{id}/reset", sessionHandler.Reset)
			r.Post("/{id}/restart", sessionHandler.Restart)
		})

		r.Get("/tips/{label}", tipsHandler.Get)
		r.Get("/backends/health", healthHandler.Backends)
	})

	return r
}
