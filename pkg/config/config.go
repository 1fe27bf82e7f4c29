package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// Every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market calendar
	Market MarketConfig

	// Schedulers
	Scheduler SchedulerConfig

	// Forecasting
	Forecast ForecastConfig

	// Database (optional; forecast history is disabled when URL is empty)
	Database DatabaseConfig

	// Redis (optional second-level series cache)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// MarketConfig describes the exchange calendar used to gate training.
type MarketConfig struct {
	Timezone  string // IANA zone of the exchange, e.g. America/New_York
	CloseHour int    // local hour at/after which the session is closed
}

// SchedulerConfig holds the two training-loop cadences.
type SchedulerConfig struct {
	RetrainEvery       time.Duration // full-batch retrain tick
	RefitEvery         time.Duration // fast-cadence refit tick
	TrainScriptsDir    string        // one subdirectory per symbol with executable artifacts
	TrainMaxConcurrent int           // cap on concurrently running training processes
}

// ForecastConfig holds serving-path knobs.
type ForecastConfig struct {
	ModelsDir string        // saved model artifacts, one directory per symbol
	SeqLength int           // model input window length
	CacheTTL  time.Duration // freshness window for fetched price series
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables.
// This is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8000"),
		Env:  getEnv("ENV", "development"),

		Market: MarketConfig{
			Timezone:  getEnv("MARKET_TIMEZONE", "America/New_York"),
			CloseHour: getEnvAsInt("MARKET_CLOSE_HOUR", 16),
		},

		Scheduler: SchedulerConfig{
			RetrainEvery:       getEnvAsDuration("RETRAIN_EVERY", "30m"),
			RefitEvery:         getEnvAsDuration("REFIT_EVERY", "15m"),
			TrainScriptsDir:    getEnv("TRAIN_SCRIPTS_DIR", "create_models"),
			TrainMaxConcurrent: getEnvAsInt("TRAIN_MAX_CONCURRENT", 4),
		},

		Forecast: ForecastConfig{
			ModelsDir: getEnv("MODELS_DIR", "models"),
			SeqLength: getEnvAsInt("SEQ_LENGTH", 20),
			CacheTTL:  getEnvAsDuration("CACHE_TTL", "10m"),
		},

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
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are sane.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("MARKET_TIMEZONE %q is not a valid IANA zone: %w", c.Market.Timezone, err)
	}

	if c.Market.CloseHour < 0 || c.Market.CloseHour > 23 {
		return fmt.Errorf("MARKET_CLOSE_HOUR must be in [0, 23]")
	}

	if c.Forecast.SeqLength < 1 {
		return fmt.Errorf("SEQ_LENGTH must be positive")
	}

	if c.Scheduler.TrainMaxConcurrent < 1 {
		return fmt.Errorf("TRAIN_MAX_CONCURRENT must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
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
