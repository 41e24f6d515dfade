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
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/service"
)

// RouterConfig holds the transport settings of the chat router.
type RouterConfig struct {
	CORS       middleware.CORSConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all chat service routes registered.
func NewRouter(
	chatService *service.ChatService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("chat"))
	r.Use(middleware.Tracing("chat"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	chatHandler := NewChatHandler(chatService, logger)

	r.Route("/api/v1/chat", func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.ContentTypeJSON)

		r.Get("/quick-actions", chatHandler.ListQuickActions)

		r.Post("/sessions", chatHandler.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", chatHandler.GetSession)
			r.Post("/open", chatHandler.Open)
			r.Post("/minimize", chatHandler.Minimize)
			r.Post("/maximize", chatHandler.Maximize)
			r.Post("/close", chatHandler.Close)
			r.Post("/reset", chatHandler.Reset)
			r.Post("/messages", chatHandler.SendMessage)
			r.Post("/quick-actions", chatHandler.SendQuickAction)
			r.Post("/handoff", chatHandler.Handoff)
		})
	})

	return r
}
