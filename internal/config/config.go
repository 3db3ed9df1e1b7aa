package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Application
	App AppConfig

	// Server
	Server ServerConfig

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Claude AI
	Claude ClaudeConfig

	// Crawler
	Crawler CrawlerConfig

	// Stripe billing
	Stripe StripeConfig

	// S3/MinIO report storage
	Storage StorageConfig

	// Rate Limits
	RateLimits RateLimitConfig
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"conkord"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"APP_LOG_LEVEL" default:"info"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"300s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"conkord"`
	Password        string        `envconfig:"DB_PASSWORD" default:""`
	Database        string        `envconfig:"DB_NAME" default:"conkord"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"DB_CONN_MAX_IDLE_TIME" default:"1m"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Host         string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port         int           `envconfig:"REDIS_PORT" default:"6379"`
	Password     string        `envconfig:"REDIS_PASSWORD" default:""`
	DB           int           `envconfig:"REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"5"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Addr returns Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClaudeConfig holds Claude AI settings
type ClaudeConfig struct {
	APIKey       string        `envconfig:"ANTHROPIC_API_KEY" default:""`
	Model        string        `envconfig:"CLAUDE_MODEL" default:"claude-sonnet-4-20250514"`
	MaxTokens    int           `envconfig:"CLAUDE_MAX_TOKENS" default:"4096"`
	Timeout      time.Duration `envconfig:"CLAUDE_TIMEOUT" default:"60s"`
	RateLimitRPM int           `envconfig:"CLAUDE_RATE_LIMIT_RPM" default:"50"`
	CacheTTL     time.Duration `envconfig:"CLAUDE_CACHE_TTL" default:"1h"`
}

// CrawlerConfig holds crawl settings. MaxPages includes the homepage.
type CrawlerConfig struct {
	MaxPages     int           `envconfig:"CRAWL_MAX_PAGES" default:"8"`
	FetchTimeout time.Duration `envconfig:"CRAWL_FETCH_TIMEOUT" default:"15s"`
	FetchDelay   time.Duration `envconfig:"CRAWL_FETCH_DELAY" default:"300ms"`
	UserAgent    string        `envconfig:"CRAWL_USER_AGENT" default:"Mozilla/5.0 (compatible; ConkordBot/1.0; +https://conkord.app/bot)"`
}

// StripeConfig holds Stripe billing settings
type StripeConfig struct {
	SecretKey  string `envconfig:"STRIPE_SECRET_KEY" default:""`
	PriceID    string `envconfig:"STRIPE_PRICE_ID" default:""`
	SuccessURL string `envconfig:"STRIPE_SUCCESS_URL" default:"https://conkord.app/billing/success"`
	CancelURL  string `envconfig:"STRIPE_CANCEL_URL" default:"https://conkord.app/billing/cancel"`
}

// StorageConfig holds S3/MinIO settings for shareable report export
type StorageConfig struct {
	Endpoint  string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"STORAGE_BUCKET" default:"conkord-reports"`
	Region    string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	UseSSL    bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled        bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMin int  `envconfig:"RATE_LIMIT_REQUESTS_PER_MIN" default:"60"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config without failing on missing secrets (for CLI tools)
func LoadWithDefaults() (*Config, error) {
	var cfg Config

	envconfig.Process("", &cfg)

	if cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	if c.Crawler.MaxPages < 1 {
		errs = append(errs, "CRAWL_MAX_PAGES must be at least 1")
	}

	if c.Env != EnvDevelopment {
		if c.Database.Password == "" {
			errs = append(errs, "DB_PASSWORD is required in non-development mode")
		}
		if c.Claude.APIKey == "" {
			errs = append(errs, "ANTHROPIC_API_KEY is required in non-development mode")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
