package models

// MConfig Structure
type MConfig struct {
	Name        string          `yaml:"name"`
	Host        string          `yaml:"host"`
	Port        int             `yaml:"port"`
	LogLevel    string          `yaml:"log_level"`
	GrpcHost    string          `yaml:"grpc_host"`
	GrpcPort    int             `yaml:"grpc_port"`
	CorsOrigins []string        `yaml:"cors_origins"`
	Storage     MStorageConfig  `yaml:"storage"`
	Network     MNetworkConfig  `yaml:"network"`
	Broker      MBrokerConfig   `yaml:"broker"`
	Cache       MCacheConfig    `yaml:"cache"`
	Universe    MUniverseConfig `yaml:"universe"`
	Market      MMarketConfig   `yaml:"market"`
}

type MStorageConfig struct {
	Enabled            bool   `yaml:"enabled"`
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	UserAgent      string `yaml:"user_agent"`
}

type MBrokerConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	EnvFile   string `yaml:"env_file"`
	BaseURL   string `yaml:"base_url"` // Optional
	Timeout   int    `yaml:"timeout"`
}

// Configured reports whether broker credentials are present.
func (b MBrokerConfig) Configured() bool {
	return b.APIKey != "" && b.APISecret != ""
}

type MCacheConfig struct {
	Backend             string `yaml:"backend"` // "memory" or "redis"
	RedisAddr           string `yaml:"redis_addr"`
	RedisPassword       string `yaml:"redis_password"`
	RedisDB             int    `yaml:"redis_db"`
	InstrumentsTTL      int    `yaml:"instruments_ttl"`
	PositionsTTL        int    `yaml:"positions_ttl"`
	QuotesTTL           int    `yaml:"quotes_ttl"`
	CandlesTTL          int    `yaml:"candles_ttl"`
	IndexListTTL        int    `yaml:"index_list_ttl"`
	RedisRetentionHours int    `yaml:"redis_retention_hours"`
}

type MUniverseConfig struct {
	BroadIndexFile string `yaml:"broad_index_file"`
	IndexFeedURL   string `yaml:"index_feed_url"`
	SectorIndex    string `yaml:"sector_index"`
}

type MMarketConfig struct {
	DefaultPageSize   int `yaml:"default_page_size"`
	MaxPageSize       int `yaml:"max_page_size"`
	CandleConcurrency int `yaml:"candle_concurrency"`
}

// GetLogLevel returns the configured log level.
func (c *MConfig) GetLogLevel() string {
	if c == nil {
		return ""
	}
	return c.LogLevel
}
