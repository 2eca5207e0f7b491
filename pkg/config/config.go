package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Upstream data modes
const (
	ModeSimulated = "simulated"
	ModeAPI       = "api"
)

// MaxBatchLimit is the hard ceiling on products per batch validation
const MaxBatchLimit = 50

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	Database DatabaseConfig
	Redis    RedisConfig

	// Upstream data sources
	Marketplace MarketplaceConfig
	Social      SocialConfig
	Storefront  StorefrontConfig

	Validation ValidationConfig
	Scheduler  SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration.
// An empty URL disables validation history.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// MarketplaceConfig holds AliExpress affiliate API configuration
type MarketplaceConfig struct {
	Mode      string // simulated | api
	AppKey    string
	AppSecret string
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second
}

// SocialConfig holds social signal provider configuration
type SocialConfig struct {
	Mode    string // simulated | api
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StorefrontConfig drives the competition scraper.
// SearchURL must contain a single %s for the escaped keyword.
type StorefrontConfig struct {
	SearchURL      string
	ResultSelector string
	PriceSelector  string
}

// ValidationConfig holds the scoring pipeline tunables
type ValidationConfig struct {
	MaxBatch    int
	Parallelism int
	CacheTTL    time.Duration
	AdCost      float64
}

// SchedulerConfig holds cron settings for the revalidation worker
type SchedulerConfig struct {
	RevalidationSchedule string
	RevalidationLookback time.Duration
	RevalidationLimit    int
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 && envFiles[0] != "" {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		loadEnvFile()
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		Marketplace: MarketplaceConfig{
			Mode:      getEnv("MARKETPLACE_MODE", ModeSimulated),
			AppKey:    getEnv("ALIEXPRESS_APP_KEY", ""),
			AppSecret: getEnv("ALIEXPRESS_APP_SECRET", ""),
			BaseURL:   getEnv("ALIEXPRESS_API_URL", "https://api-sg.aliexpress.com/sync"),
			Timeout:   getEnvAsDuration("MARKETPLACE_TIMEOUT", "10s"),
			RateLimit: getEnvAsInt("MARKETPLACE_RATE_LIMIT", 5),
		},

		Social: SocialConfig{
			Mode:    getEnv("SOCIAL_MODE", ModeSimulated),
			BaseURL: getEnv("SOCIAL_API_URL", ""),
			APIKey:  getEnv("SOCIAL_API_KEY", ""),
			Timeout: getEnvAsDuration("SOCIAL_TIMEOUT", "10s"),
		},

		Storefront: StorefrontConfig{
			SearchURL:      getEnv("STOREFRONT_SEARCH_URL", ""),
			ResultSelector: getEnv("STOREFRONT_RESULT_SELECTOR", ".store-result"),
			PriceSelector:  getEnv("STOREFRONT_PRICE_SELECTOR", ".price"),
		},

		Validation: ValidationConfig{
			MaxBatch:    getEnvAsInt("VALIDATION_MAX_BATCH", MaxBatchLimit),
			Parallelism: getEnvAsInt("VALIDATION_PARALLELISM", 8),
			CacheTTL:    getEnvAsDuration("VALIDATION_CACHE_TTL", "24h"),
			AdCost:      getEnvAsFloat("VALIDATION_AD_COST", 10),
		},

		Scheduler: SchedulerConfig{
			RevalidationSchedule: getEnv("REVALIDATION_SCHEDULE", "0 0 3 * * *"),
			RevalidationLookback: getEnvAsDuration("REVALIDATION_LOOKBACK", "168h"),
			RevalidationLimit:    getEnvAsInt("REVALIDATION_LIMIT", 200),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Validation.MaxBatch < 1 || c.Validation.MaxBatch > MaxBatchLimit {
		return fmt.Errorf("VALIDATION_MAX_BATCH must be between 1 and %d", MaxBatchLimit)
	}
	if c.Validation.Parallelism < 1 {
		return fmt.Errorf("VALIDATION_PARALLELISM must be at least 1")
	}
	if c.Validation.AdCost < 0 {
		return fmt.Errorf("VALIDATION_AD_COST must not be negative")
	}

	switch c.Marketplace.Mode {
	case ModeSimulated:
	case ModeAPI:
		if c.Marketplace.AppKey == "" || c.Marketplace.AppSecret == "" {
			return fmt.Errorf("ALIEXPRESS_APP_KEY and ALIEXPRESS_APP_SECRET are required in api mode")
		}
	default:
		return fmt.Errorf("MARKETPLACE_MODE must be one of: %s, %s", ModeSimulated, ModeAPI)
	}

	switch c.Social.Mode {
	case ModeSimulated:
	case ModeAPI:
		if c.Social.BaseURL == "" {
			return fmt.Errorf("SOCIAL_API_URL is required in api mode")
		}
	default:
		return fmt.Errorf("SOCIAL_MODE must be one of: %s, %s", ModeSimulated, ModeAPI)
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
