package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/Shiro-Bankai7/electricians/pkg/config"
	"github.com/Shiro-Bankai7/electricians/pkg/database"
	"github.com/Shiro-Bankai7/electricians/pkg/logger"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/responder"
)

// Chat session storage backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Reply backends.
const (
	ResponderRules  = "rules"
	ResponderGemini = "gemini"
	ResponderGenAI  = "genai"
)

// Config holds all configuration for the chat service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Optional rotated log file
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	// HTTP server
	HTTPPort int `env:"CHAT_HTTP_PORT" envDefault:"8002"`

	// Widget
	StartOpen      bool   `env:"CHAT_START_OPEN" envDefault:"true"`
	CompanyName    string `env:"CHAT_COMPANY_NAME" envDefault:"PowerPro Electric"`
	EmergencyPhone string `env:"CHAT_EMERGENCY_PHONE" envDefault:"(555) 123-4567"`

	// Replies
	Responder       string        `env:"CHAT_RESPONDER" envDefault:"rules"`
	GeminiAPIKey    string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GeminiModel     string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	DelegateTimeout time.Duration `env:"CHAT_DELEGATE_TIMEOUT" envDefault:"30s"`
	HistoryLimit    int           `env:"CHAT_HISTORY_LIMIT" envDefault:"40"`

	// Sessions
	Store      string        `env:"CHAT_STORE" envDefault:"memory"`
	SessionTTL time.Duration `env:"CHAT_SESSION_TTL" envDefault:"24h"`

	// Redis, used when Store is "redis"
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

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
		return nil, fmt.Errorf("load chat config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.Store != StoreMemory && cfg.Store != StoreRedis {
		return nil, fmt.Errorf("CHAT_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, cfg.Store)
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("CHAT_SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	switch cfg.Responder {
	case ResponderRules:
	case ResponderGemini, ResponderGenAI:
		if cfg.GeminiAPIKey == "" && cfg.Environment == "development" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when CHAT_RESPONDER is %q", cfg.Responder)
		}
		if _, err := url.ParseRequestURI(cfg.GeminiBaseURL); err != nil {
			return nil, fmt.Errorf("invalid GEMINI_BASE_URL: %w", err)
		}
		if cfg.GeminiModel == "" {
			return nil, fmt.Errorf("GEMINI_MODEL is required when CHAT_RESPONDER is %q", cfg.Responder)
		}
	default:
		return nil, fmt.Errorf("CHAT_RESPONDER must be %q, %q or %q, got %q",
			ResponderRules, ResponderGemini, ResponderGenAI, cfg.Responder)
	}
	if cfg.DelegateTimeout <= 0 {
		return nil, fmt.Errorf("CHAT_DELEGATE_TIMEOUT must be positive, got %s", cfg.DelegateTimeout)
	}
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("CHAT_HISTORY_LIMIT must not be negative, got %d", cfg.HistoryLimit)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if cfg.OTELSampleRate < 0 || cfg.OTELSampleRate > 1.0 {
		return nil, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", cfg.OTELSampleRate)
	}
	return cfg, nil
}

// Delegated reports whether replies come from the generative model.
func (c *Config) Delegated() bool {
	return c.Responder == ResponderGemini || c.Responder == ResponderGenAI
}

// Rules returns the keyword responder settings.
func (c *Config) Rules() responder.RulesConfig {
	return responder.RulesConfig{
		CompanyName:    c.CompanyName,
		EmergencyPhone: c.EmergencyPhone,
	}
}

// DelegatedConfig returns the generative model settings.
func (c *Config) DelegatedConfig() responder.DelegatedConfig {
	d := responder.DefaultDelegatedConfig()
	d.BaseURL = c.GeminiBaseURL
	d.Model = c.GeminiModel
	d.APIKey = c.GeminiAPIKey
	d.SystemPrompt = responder.SystemPrompt(c.CompanyName, c.EmergencyPhone)
	d.HistoryLimit = c.HistoryLimit
	d.Timeout = c.DelegateTimeout
	return d
}

// Redis returns the connection settings for the session store.
func (c *Config) Redis() database.RedisConfig {
	r := database.DefaultRedisConfig()
	r.Addr = c.RedisAddr
	r.Password = c.RedisPassword
	r.DB = c.RedisDB
	return r
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
