package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shiro-Bankai7/electricians/pkg/health"
	"github.com/Shiro-Bankai7/electricians/pkg/middleware"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/service"
)

// RouterConfig holds the transport settings of the review router.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	Feed       FeedConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("review"))
	r.Use(middleware.Tracing("review"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	reviewHandler := NewReviewHandler(reviewService, logger)
	feedHandler := NewFeedHandler(reviewService, cfg.Feed, logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.With(middleware.CacheControl(int(cfg.Feed.CacheMaxAge.Seconds()))).
			Get("/feed.rss", feedHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			r.Get("/", reviewHandler.ListReviews)
			r.Post("/", reviewHandler.SubmitReview)
			r.Get("/summary", reviewHandler.GetSummary)
			r.Get("/{id}", reviewHandler.GetReview)
		})
	})

	return r
}
