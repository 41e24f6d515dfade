package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	pkgconfig "github.com/Shiro-Bankai7/electricians/pkg/config"
	"github.com/Shiro-Bankai7/electricians/pkg/logger"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/app"
	"github.com/Shiro-Bankai7/electricians/services/gateway/internal/config"
)

func main() {
	if err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log, logCloser := logger.NewWithFile("gateway", cfg.LogLevel, cfg.LogFileConfig())
	defer logCloser.Close()

	log.Info("starting gateway",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("review_url", cfg.ReviewServiceURL),
		slog.String("chat_url", cfg.ChatServiceURL),
		slog.String("inquiry_url", cfg.InquiryServiceURL),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("gateway stopped")
}
