package config

import (
	"fmt"
	"os"
	"strings"

	"trading-backend/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the YAML file.
const (
	EnvAPIKey      = "ZERODHA_API_KEY"
	EnvAPISecret   = "ZERODHA_API_SECRET"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisAddr   = "REDIS_ADDR"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.ApplyDefaults()

	// 3. Secrets live in the env file next to the broker token
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyDefaults fills every unset tunable with its default.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "trading-backend"
	}
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if len(c.CorsOrigins) == 0 {
		c.CorsOrigins = []string{"http://localhost:3000", "http://localhost:8000"}
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Broker.EnvFile == "" {
		c.Broker.EnvFile = ".env"
	}
	if c.Broker.Timeout == 0 {
		c.Broker.Timeout = 7
	}

	cache := &c.Cache
	if cache.Backend == "" {
		cache.Backend = "memory"
	}
	if cache.InstrumentsTTL == 0 {
		cache.InstrumentsTTL = 600
	}
	if cache.PositionsTTL == 0 {
		cache.PositionsTTL = 5
	}
	if cache.QuotesTTL == 0 {
		cache.QuotesTTL = 3
	}
	if cache.CandlesTTL == 0 {
		cache.CandlesTTL = 10
	}
	if cache.IndexListTTL == 0 {
		cache.IndexListTTL = 3600
	}
	if cache.RedisRetentionHours == 0 {
		cache.RedisRetentionHours = 24
	}

	if c.Universe.SectorIndex == "" {
		c.Universe.SectorIndex = "NIFTY BANK"
	}
	if c.Universe.IndexFeedURL == "" {
		c.Universe.IndexFeedURL = "https://www.nseindia.com/api/equity-stockIndices"
	}

	if c.Market.DefaultPageSize == 0 {
		c.Market.DefaultPageSize = 25
	}
	if c.Market.MaxPageSize == 0 {
		c.Market.MaxPageSize = 100
	}
	if c.Market.CandleConcurrency == 0 {
		c.Market.CandleConcurrency = 4
	}
}

// -----------------------------------------------------------------------------

// LoadEnv reads the broker env file (if present) into the process environment
// and applies the overrides it carries.
func (c *Config) LoadEnv() error {
	if _, err := os.Stat(c.Broker.EnvFile); err == nil {
		if err := godotenv.Load(c.Broker.EnvFile); err != nil {
			return fmt.Errorf("failed to load env file '%s': %w", c.Broker.EnvFile, err)
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Broker.APIKey = v
	}
	if v := os.Getenv(EnvAPISecret); v != "" {
		c.Broker.APISecret = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Storage.DBConnectionString = v
		if strings.HasPrefix(v, "postgres") {
			c.Storage.DBType = "postgres"
		}
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	// Validate Server configuration (Flattened)
	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort != 0 && (c.GrpcPort <= 1024 || c.GrpcPort > 65535) {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Validate Storage configuration
	if c.Storage.Enabled {
		switch c.Storage.DBType {
		case "sqlite":
			if c.Storage.DBPath == "" {
				return fmt.Errorf("database path cannot be empty for sqlite")
			}
		case "postgres":
			if c.Storage.DBConnectionString == "" {
				return fmt.Errorf("database connection string cannot be empty for postgres")
			}
		default:
			return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
		}
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Broker.Timeout <= 0 {
		return fmt.Errorf("broker timeout must be greater than 0")
	}

	// Validate Cache configuration
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty for the redis cache backend")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}
	for name, ttl := range map[string]int{
		"instruments_ttl": c.Cache.InstrumentsTTL,
		"positions_ttl":   c.Cache.PositionsTTL,
		"quotes_ttl":      c.Cache.QuotesTTL,
		"candles_ttl":     c.Cache.CandlesTTL,
		"index_list_ttl":  c.Cache.IndexListTTL,
	} {
		if ttl < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	// Validate Universe configuration
	if c.Universe.BroadIndexFile == "" {
		return fmt.Errorf("broad index universe file cannot be empty")
	}

	// Validate Market configuration
	if c.Market.MaxPageSize <= 0 || c.Market.DefaultPageSize <= 0 {
		return fmt.Errorf("page sizes must be greater than 0")
	}
	if c.Market.DefaultPageSize > c.Market.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", c.Market.DefaultPageSize, c.Market.MaxPageSize)
	}
	if c.Market.CandleConcurrency <= 0 {
		return fmt.Errorf("candle concurrency must be greater than 0")
	}

	return nil
}
