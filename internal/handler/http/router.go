package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/catalogsearch/internal/service"
	"github.com/utafrali/catalogsearch/pkg/health"
	"github.com/utafrali/catalogsearch/pkg/middleware"
)

// ServiceName labels metrics and spans.
const ServiceName = "catalog-search"

// RouterConfig holds the cross-cutting settings of the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	PprofAllowedCIDRs  []string
	// SuggestLimiter throttles the per-keystroke endpoints. Nil disables it.
	SuggestLimiter *middleware.RateLimiter
}

// NewRouter creates a chi router with all catalog search routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	h := NewCatalogHandler(catalogService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.SuggestLimiter != nil {
				r.Use(cfg.SuggestLimiter.Handler)
			}
			r.Get("/suggest", h.Suggest)
			r.Get("/suggest/queries", h.Completions)
		})
		r.Get("/suggest/terms", h.Terms)

		r.Get("/search", h.Search)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(time.Minute))
			r.Get("/products/popular", h.Popular)
			r.Get("/product/{id}", h.Product)
			r.Get("/product/{id}/related", h.Related)
		})
	})

	return r
}
