package http

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts the catalog routes behind the common middleware chain.
func NewRouter(h *PropertyHandler, log *logger.Logger, m *metrics.MetricsManager) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(log, m))
	r.Use(Tracing)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", h.HandleIndex)
		r.Get("/properties/search", h.HandleSearch)
		r.Get("/properties/{id}", h.HandleDetails)
		r.Get("/categories", h.HandleCategories)
	})
	return r
}
