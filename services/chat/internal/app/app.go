package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Shiro-Bankai7/electricians/pkg/database"
	"github.com/Shiro-Bankai7/electricians/pkg/health"
	"github.com/Shiro-Bankai7/electricians/pkg/httpclient"
	pkgkafka "github.com/Shiro-Bankai7/electricians/pkg/kafka"
	"github.com/Shiro-Bankai7/electricians/pkg/middleware"
	"github.com/Shiro-Bankai7/electricians/pkg/tracing"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/config"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/event"
	handler "github.com/Shiro-Bankai7/electricians/services/chat/internal/handler/http"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/repository"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/repository/memory"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/repository/redis"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/responder"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/service"
)

const sweepInterval = 10 * time.Minute

// App wires together all dependencies and runs the chat service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redisClient    *goredis.Client
	memoryStore    *memory.SessionRepository
	publisher      pkgkafka.Publisher
	chatService    *service.ChatService
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerCfg := tracing.DefaultConfig("chat-service")
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

	// Session storage.
	var repo repository.SessionRepository
	switch cfg.Store {
	case config.StoreRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redisClient = client
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		repo = redis.NewSessionRepository(client, cfg.SessionTTL)
	default:
		a.memoryStore = memory.NewSessionRepository(cfg.SessionTTL)
		repo = a.memoryStore
		logger.Info("using in-memory session store", slog.Duration("ttl", cfg.SessionTTL))
	}

	// Replies.
	resp, err := newResponder(ctx, cfg, logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	logger.Info("chat responder selected", slog.String("responder", resp.Name()))

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
	a.chatService = service.NewChatService(repo, resp, eventProducer, service.TimerSleeper{}, service.Options{
		StartOpen:      cfg.StartOpen,
		HandoffEnabled: cfg.Delegated(),
	}, logger)

	// HTTP router.
	router := handler.NewRouter(a.chatService, healthHandler, logger, handler.RouterConfig{
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

func newResponder(ctx context.Context, cfg *config.Config, logger *slog.Logger) (responder.Responder, error) {
	switch cfg.Responder {
	case config.ResponderGemini:
		clientCfg := httpclient.DefaultConfig()
		clientCfg.MaxRetries = 0
		clientCfg.Timeout = cfg.DelegateTimeout
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(clientCfg),
			httpclient.DefaultCircuitBreakerConfig("gemini"),
			logger,
		)
		return responder.NewDelegated(cfg.DelegatedConfig(), client, logger), nil
	case config.ResponderGenAI:
		sdk, err := responder.NewSDK(ctx, cfg.DelegatedConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		return sdk, nil
	default:
		return responder.NewRules(cfg.Rules(), responder.DefaultRandom), nil
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

	if a.memoryStore != nil {
		g.Go(func() error {
			a.sweepSessions(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.Shutdown()
	})

	return g.Wait()
}

// sweepSessions drops idle in-memory sessions until ctx is done.
func (a *App) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.memoryStore.Sweep(); n > 0 {
				a.logger.Debug("expired chat sessions removed", slog.Int("count", n))
			}
		}
	}
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.chatService.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("pending replies did not stop in time", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
}
