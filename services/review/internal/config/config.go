package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Shiro-Bankai7/electricians/pkg/config"
	"github.com/Shiro-Bankai7/electricians/pkg/database"
	"github.com/Shiro-Bankai7/electricians/pkg/logger"
	"github.com/Shiro-Bankai7/electricians/services/review/internal/domain"
)

// Review storage backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all configuration for the review service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional rotated log file
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	// HTTP server
	HTTPPort int `env:"REVIEW_HTTP_PORT" envDefault:"8001"`

	// Reviews
	Store            string `env:"REVIEW_STORE" envDefault:"memory"`
	Seed             bool   `env:"REVIEW_SEED" envDefault:"true"`
	SummaryThreshold int    `env:"REVIEW_SUMMARY_THRESHOLD" envDefault:"5"`
	InitialPageSize  int    `env:"REVIEW_INITIAL_PAGE_SIZE" envDefault:"6"`
	DesktopStep      int    `env:"REVIEW_DESKTOP_STEP" envDefault:"15"`
	MobileStep       int    `env:"REVIEW_MOBILE_STEP" envDefault:"10"`
	TruncateLimit    int    `env:"REVIEW_TRUNCATE_LIMIT" envDefault:"180"`

	// RSS feed
	SiteURL          string `env:"SITE_URL" envDefault:"http://localhost:5173"`
	CompanyName      string `env:"COMPANY_NAME" envDefault:"PowerPro Electric"`
	CompanyEmail     string `env:"COMPANY_EMAIL" envDefault:"contact@powerpro.com"`
	FeedSize         int    `env:"REVIEW_FEED_SIZE" envDefault:"20"`
	FeedCacheSeconds int    `env:"REVIEW_FEED_CACHE_SECONDS" envDefault:"300"`

	// PostgreSQL, used when Store is "postgres"
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"powerpro"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"powerpro"`
	PostgresDB   string `env:"REVIEW_DB_NAME" envDefault:"review_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.Store != StoreMemory && cfg.Store != StorePostgres {
		return nil, fmt.Errorf("REVIEW_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, cfg.Store)
	}
	if cfg.SummaryThreshold < 1 {
		return nil, fmt.Errorf("REVIEW_SUMMARY_THRESHOLD must be at least 1, got %d", cfg.SummaryThreshold)
	}
	if cfg.InitialPageSize < 1 || cfg.DesktopStep < 1 || cfg.MobileStep < 1 {
		return nil, fmt.Errorf("review page sizes must be positive")
	}
	if cfg.TruncateLimit < 1 {
		return nil, fmt.Errorf("REVIEW_TRUNCATE_LIMIT must be positive, got %d", cfg.TruncateLimit)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	return cfg, nil
}

// Paging returns the load-more policy.
func (c *Config) Paging() domain.PagingPolicy {
	return domain.PagingPolicy{
		Initial:     c.InitialPageSize,
		DesktopStep: c.DesktopStep,
		MobileStep:  c.MobileStep,
	}
}

// Postgres returns the connection settings for the review database.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// LogFileConfig returns the rotated log file settings.
func (c *Config) LogFileConfig() logger.FileConfig {
	return logger.FileConfig{
		Path:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}
