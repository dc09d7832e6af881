package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hyperengineering/searchbridge/internal/metrics"
)

// NewRouter creates a new router with all routes configured. withMetrics
// exposes the Prometheus registry at /metrics.
func NewRouter(h *Handler, withMetrics bool) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Every drop may fan out into remote deletes: burst of 100, then 10/second.
	deleteRateLimiter := NewDeleteRateLimiter(100, 100*time.Millisecond)

	if withMetrics {
		r.Method("GET", "/metrics", metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(h.apiKey))
			r.Post("/dsl/term", h.CompileTerm)
			r.Get("/snapshot", h.Snapshot)

			r.Post("/extensions", h.CreateExtension)
			r.Post("/schemas", h.CreateSchema)
			r.Post("/tables", h.CreateTable)
			r.Get("/indexes", h.ListIndexes)
			r.Post("/indexes", h.CreateIndex)

			r.Group(func(r chi.Router) {
				r.Use(deleteRateLimiter.Middleware)
				r.Delete("/indexes/{oid}", h.DropIndex)
				r.Delete("/tables/{oid}", h.DropTable)
				r.Delete("/schemas/{oid}", h.DropSchema)
				r.Delete("/extensions/{name}", h.DropExtension)
			})
		})
	})

	return r
}
