package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shiro-Bankai7/electricians/pkg/health"
	"github.com/Shiro-Bankai7/electricians/pkg/httpclient"
	pkgkafka "github.com/Shiro-Bankai7/electricians/pkg/kafka"
	"github.com/Shiro-Bankai7/electricians/pkg/middleware"
	"github.com/Shiro-Bankai7/electricians/pkg/tracing"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/config"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/event"
	handler "github.com/Shiro-Bankai7/electricians/services/inquiry/internal/handler/http"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/sender"
	"github.com/Shiro-Bankai7/electricians/services/inquiry/internal/service"
)

// App wires together all dependencies and runs the inquiry service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	publisher      pkgkafka.Publisher
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerCfg := tracing.DefaultConfig("inquiry-service")
	tracerCfg.Environment = cfg.Environment
	tracerCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracerCfg.SampleRate = cfg.OTELSampleRate
	tracerCfg.Enabled = cfg.OTELEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler()

	// Delivery.
	var snd sender.Sender
	switch cfg.Sender {
	case config.SenderHTTP:
		clientCfg := httpclient.DefaultConfig()
		clientCfg.MaxRetries = 0
		clientCfg.Timeout = cfg.ForwardTimeout
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(clientCfg),
			httpclient.DefaultCircuitBreakerConfig("inquiry-forward"),
			logger,
		)
		snd = sender.NewHTTPSender(cfg.ForwardURL, client)
		logger.Info("forwarding inquiries", slog.String("url", cfg.ForwardURL))
	default:
		snd = sender.NewLogSender(logger)
		logger.Info("logging inquiries only")
	}

	// Events.
	if cfg.KafkaEnabled {
		producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
		a.publisher = producer
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		a.publisher = pkgkafka.NopPublisher{Logger: logger}
	}

	// Build the dependency graph.
	eventProducer := event.NewProducer(a.publisher, logger)
	inquiryService := service.NewInquiryService(snd, eventProducer, service.Options{
		CompanyName:    cfg.CompanyName,
		EmergencyPhone: cfg.EmergencyPhone,
	}, logger)

	// HTTP router.
	router := handler.NewRouter(inquiryService, healthHandler, logger, handler.RouterConfig{
		CORS: middleware.CORSConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Environment:    cfg.Environment,
		},
		PprofCIDRs: cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
