package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bazaarlabs/catalog-search/internal/service"
	"github.com/bazaarlabs/catalog-search/pkg/health"
	"github.com/bazaarlabs/catalog-search/pkg/middleware"
)

// NewRouter creates a chi router with all catalog search routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog-search"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	searchHandler := NewSearchHandler(catalogService, logger)

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)
		r.Get("/index", searchHandler.IndexStatus)
		r.Post("/reindex", searchHandler.Reindex)
	})

	return r
}
