package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shiro-Bankai7/electricians/pkg/health"
	"github.com/Shiro-Bankai7/electricians/pkg/tracing"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/config"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/handler"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/middleware"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/proxy"
)

// visitorTTL is how long an idle client keeps its rate limit bucket.
const visitorTTL = 3 * time.Minute

// App wires together all dependencies and runs the site gateway.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing the reverse proxy
// and HTTP router. The gateway holds no storage or Kafka dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerCfg := tracing.DefaultConfig("gateway")
	tracerCfg.Environment = cfg.Environment
	tracerCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracerCfg.SampleRate = cfg.OTELSampleRate
	tracerCfg.Enabled = cfg.OTELEnabled
	tracerShutdown, err := tracing.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	sp, err := proxy.NewServiceProxy(cfg.Upstreams(), proxy.TransportConfig{
		DialTimeout:     cfg.ProxyDialTimeout,
		ResponseTimeout: cfg.ProxyResponseTimeout,
		IdleTimeout:     cfg.ProxyIdleTimeout,
		MaxIdleConns:    cfg.ProxyMaxIdleConns,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init service proxy: %w", err)
	}

	// Backend reachability is reported but never fails readiness.
	healthHandler := health.NewHandler()
	for name, rawURL := range cfg.Upstreams() {
		healthHandler.RegisterNonCritical(name, dialCheck(rawURL))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, visitorTTL, logger)

	router := handler.NewRouter(cfg, sp, limiter, healthHandler, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		httpServer:     httpServer,
		limiter:        limiter,
		tracerShutdown: tracerShutdown,
	}, nil
}

// dialCheck reports whether a TCP connection to the service host can be opened.
func dialCheck(rawURL string) health.Checker {
	return func(ctx context.Context) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("parse service URL: %w", err)
		}
		d := net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return fmt.Errorf("downstream unreachable: %w", err)
		}
		_ = conn.Close()
		return nil
	}
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

// Shutdown gracefully stops the gateway in order:
// 1. HTTP server (drain in-flight requests)
// 2. Rate limiter cleanup loop
// 3. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.limiter.Close()

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
