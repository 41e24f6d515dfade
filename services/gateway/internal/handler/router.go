package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shiro-Bankai7/electricians/pkg/health"
	pkgmiddleware "github.com/Shiro-Bankai7/electricians/pkg/middleware"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/config"
	gwmiddleware "github.com/Shiro-Bankai7/electricians/services/gateway/internal/middleware"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/proxy"
)

// contactCacheMaxAge is how long browsers may cache the site contact block.
const contactCacheMaxAge = 3600

// NewRouter creates a chi router with global middleware, health endpoints,
// the site contact endpoint and proxy routes to the backend services.
func NewRouter(
	cfg *config.Config,
	sp *proxy.ServiceProxy,
	limiter *gwmiddleware.RateLimiter,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(pkgmiddleware.CORS(pkgmiddleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		ExposedHeaders: []string{pkgmiddleware.CorrelationHeader, "Retry-After"},
		MaxAge:         cfg.CORSMaxAge,
		Environment:    cfg.Environment,
	}))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("gateway"))
	r.Use(pkgmiddleware.Tracing("gateway"))
	r.Use(pkgmiddleware.RequestLogger(logger))

	// Health check endpoints.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	// Metrics endpoint with IP allowlist protection.
	r.With(pkgmiddleware.IPAllowlist(cfg.MetricsAllowedCIDRs, logger)).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	// Pprof debug endpoints with IP allowlist.
	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	contact := NewContactInfo(cfg.SitePhone, cfg.SitePhoneURI, cfg.SiteEmail)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Handler)

		r.With(pkgmiddleware.CacheControl(contactCacheMaxAge)).
			Get("/site/contact", SiteContactHandler(contact))

		// Review Service
		r.Handle("/reviews", sp.Handler("review"))
		r.Handle("/reviews/*", sp.Handler("review"))

		// Chat Service
		r.Handle("/chat/*", sp.Handler("chat"))

		// Inquiry Service
		r.Handle("/bookings", sp.Handler("inquiry"))
		r.Handle("/bookings/*", sp.Handler("inquiry"))
		r.Handle("/contact", sp.Handler("inquiry"))
	})

	return r
}
