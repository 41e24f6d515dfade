package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/Shiro-Bankai7/electricians/pkg/config"
	"github.com/Shiro-Bankai7/electricians/pkg/logger"
)

// Inquiry delivery backends.
const (
	SenderLog  = "log"
	SenderHTTP = "http"
)

// Config holds all configuration for the inquiry service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional rotated log file
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	// HTTP server
	HTTPPort int `env:"INQUIRY_HTTP_PORT" envDefault:"8003"`

	// Site details
	CompanyName    string `env:"COMPANY_NAME" envDefault:"PowerPro Electric"`
	EmergencyPhone string `env:"EMERGENCY_PHONE" envDefault:"(555) 123-4567"`

	// Delivery
	Sender         string        `env:"INQUIRY_SENDER" envDefault:"log"`
	ForwardURL     string        `env:"INQUIRY_FORWARD_URL"`
	ForwardTimeout time.Duration `env:"INQUIRY_FORWARD_TIMEOUT" envDefault:"10s"`

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
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load inquiry config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	switch cfg.Sender {
	case SenderLog:
	case SenderHTTP:
		u, err := url.Parse(cfg.ForwardURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("INQUIRY_FORWARD_URL must be an absolute http(s) URL when INQUIRY_SENDER is %q", SenderHTTP)
		}
		if cfg.ForwardTimeout <= 0 {
			return nil, fmt.Errorf("INQUIRY_FORWARD_TIMEOUT must be positive, got %s", cfg.ForwardTimeout)
		}
	default:
		return nil, fmt.Errorf("INQUIRY_SENDER must be %q or %q, got %q", SenderLog, SenderHTTP, cfg.Sender)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	return cfg, nil
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
