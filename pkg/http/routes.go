package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tinylink/pkg/logging"
)

// SetupRoutes wires the management API, the redirect path, and the health
// check. /{code} is the catch-all; chi routes static segments (/api, /healthz,
// /code) ahead of it, and the handler re-checks the reserved names itself.
func SetupRoutes(r *chi.Mux, handler *Handler, logger *logging.Logger) {
	r.Use(middleware.Recoverer)
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))

	r.Get("/healthz", handler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/links", handler.CreateLink)
		r.Get("/links", handler.ListLinks)
		r.Get("/links/{code}", handler.GetLink)
		r.Delete("/links/{code}", handler.DeleteLink)
	})

	r.Get("/{code}", handler.Redirect)
}
