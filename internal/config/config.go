package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/internal/ports"
)

// Config holds all application configuration, loaded from the environment
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Summary   SummaryConfig
	Report    ReportConfig
	Renderer  RendererConfig
	Auth      AuthConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// DatabaseConfig holds database configuration. The database is optional; when
// no URL is set, run history is kept in memory only.
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
	Requests int
	Window   time.Duration
}

// SummaryConfig holds narrative summary provider configuration
type SummaryConfig struct {
	Provider    string // "openai" or "mock"
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TimeoutMs   int
	MaxAttempts int
}

// ReportConfig holds report generation configuration
type ReportConfig struct {
	OutputDir     string
	RecentLimit   int
	DefaultFormat string
	Stylesheet    string
}

// RendererConfig holds PDF renderer configuration
type RendererConfig struct {
	WkhtmltopdfPath string
}

// AuthConfig holds API key authentication configuration
type AuthConfig struct {
	Enabled  bool
	KeysFile string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load reads configuration from environment variables. A .env file is loaded
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvBool("RATE_LIMIT_ENABLED", false),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			Requests: getEnvInt("RATE_LIMIT_REQUESTS", 30),
			Window:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Summary: SummaryConfig{
			Provider:    getEnv("SUMMARY_PROVIDER", "mock"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4"),
			MaxTokens:   getEnvInt("OPENAI_MAX_TOKENS", 1000),
			Temperature: getEnvFloat("OPENAI_TEMPERATURE", 0.7),
			TimeoutMs:   getEnvInt("OPENAI_TIMEOUT_MS", 30000),
			MaxAttempts: getEnvInt("OPENAI_MAX_ATTEMPTS", 3),
		},
		Report: ReportConfig{
			OutputDir:     getEnv("REPORT_OUTPUT_DIR", "output"),
			RecentLimit:   getEnvInt("REPORT_RECENT_LIMIT", 5),
			DefaultFormat: getEnv("REPORT_DEFAULT_FORMAT", "pdf"),
			Stylesheet:    getEnv("REPORT_STYLESHEET", ""),
		},
		Renderer: RendererConfig{
			WkhtmltopdfPath: getEnv("WKHTMLTOPDF_PATH", ""),
		},
		Auth: AuthConfig{
			Enabled:  getEnvBool("AUTH_ENABLED", true),
			KeysFile: getEnv("API_KEYS_FILE", "api_keys.json"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	cfg.Database.Enabled = cfg.Database.URL != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Summary.Provider != "mock" && c.Summary.Provider != "openai" {
		return fmt.Errorf("unknown summary provider: %q", c.Summary.Provider)
	}
	if c.Summary.Provider == "openai" && c.Summary.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER is openai")
	}
	if c.Report.DefaultFormat != "pdf" && c.Report.DefaultFormat != "markdown" {
		return fmt.Errorf("invalid default report format: %q", c.Report.DefaultFormat)
	}
	if c.RateLimit.Enabled && c.RateLimit.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when rate limiting is enabled")
	}
	return nil
}

// ToSummaryConfig maps to the provider port configuration
func (c *Config) ToSummaryConfig() ports.SummaryConfig {
	return ports.SummaryConfig{
		Provider:    c.Summary.Provider,
		APIKey:      c.Summary.APIKey,
		Model:       c.Summary.Model,
		MaxTokens:   c.Summary.MaxTokens,
		Temperature: c.Summary.Temperature,
		TimeoutMs:   c.Summary.TimeoutMs,
		MaxAttempts: c.Summary.MaxAttempts,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
