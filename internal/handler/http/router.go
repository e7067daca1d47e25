package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/propsearch/internal/service"
	"github.com/utafrali/propsearch/pkg/health"
	"github.com/utafrali/propsearch/pkg/middleware"
)

// ServiceName labels HTTP metrics and server spans.
const ServiceName = "propsearch"

// suggestionMaxAge is how long clients may cache location suggestions, in seconds.
const suggestionMaxAge = 60

// Options tunes the router. A zero RateLimitRPS disables limiting and an
// empty PprofAllowedCIDRs leaves profiling unmounted.
type Options struct {
	RateLimitRPS      float64
	RateLimitBurst    int
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all search routes registered.
func NewRouter(
	searchService *service.SearchService,
	healthHandler *health.Handler,
	opts Options,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, opts.PprofAllowedCIDRs, logger)

	searchHandler := NewSearchHandler(searchService, logger)

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, logger))
		r.With(middleware.CacheControl(suggestionMaxAge)).Get("/locations", searchHandler.SearchLocations)
		r.Get("/properties", searchHandler.SearchProperties)
	})

	return r
}
