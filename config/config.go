package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Engine     EngineConfig
	Simulation SimulationConfig
	Logger     LoggerConfig
	Memory     MemoryConfig
	Database   DatabaseConfig `envPrefix:"DATABASE_"`
	Redis      RedisConfig    `envPrefix:"REDIS_"`
	Kafka      KafkaConfig    `envPrefix:"KAFKA_"`
}

// ServerConfig holds the monitoring HTTP server configuration
type ServerConfig struct {
	Enabled         bool          `env:"MONITOR_ENABLED" envDefault:"false"`
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// EngineConfig holds matching engine configuration
type EngineConfig struct {
	Instruments          int           `env:"ENGINE_INSTRUMENTS" envDefault:"1024"`
	InstrumentMode       string        `env:"ENGINE_INSTRUMENT_MODE" envDefault:"keyed"` // keyed, bucket
	SymbolPrefix         string        `env:"ENGINE_SYMBOL_PREFIX" envDefault:"TICKER"`
	CompactEvery         int           `env:"ENGINE_COMPACT_EVERY" envDefault:"256"`
	OrderCleanupEnabled  bool          `env:"ORDER_CLEANUP_ENABLED" envDefault:"false"`
	OrderCleanupInterval time.Duration `env:"ORDER_CLEANUP_INTERVAL" envDefault:"5m"`
	TradeLogPath         string        `env:"TRADE_LOG_PATH"`
	TradeBufferSize      int           `env:"TRADE_BUFFER_SIZE" envDefault:"4096"`
	TradeBatchSize       int           `env:"TRADE_BATCH_SIZE" envDefault:"100"`
	TradeFlushInterval   time.Duration `env:"TRADE_FLUSH_INTERVAL" envDefault:"100ms"`
}

// SimulationConfig describes the broker simulation run at startup
type SimulationConfig struct {
	Brokers     int     `env:"SIM_BROKERS" envDefault:"5"`
	Iterations  int     `env:"SIM_ITERATIONS" envDefault:"200"`
	BatchSize   int     `env:"SIM_BATCH_SIZE" envDefault:"5"`
	Seed        uint64  `env:"SIM_SEED" envDefault:"12345"`
	MinQuantity int64   `env:"SIM_MIN_QUANTITY" envDefault:"1"`
	MaxQuantity int64   `env:"SIM_MAX_QUANTITY" envDefault:"100"`
	MinPrice    float64 `env:"SIM_MIN_PRICE" envDefault:"10"`
	MaxPrice    float64 `env:"SIM_MAX_PRICE" envDefault:"100"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"INFO"` // DEBUG, INFO, WARN, ERROR
}

// MemoryConfig holds in-memory storage configuration
type MemoryConfig struct {
	Enabled   bool `env:"MEMORY_ENABLED" envDefault:"true"`
	MaxOrders int  `env:"MEMORY_MAX_ORDERS" envDefault:"100000"`
	MaxTrades int  `env:"MEMORY_MAX_TRADES" envDefault:"1000"`
}

// DatabaseConfig holds PostgreSQL trade store configuration
type DatabaseConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"false"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"trading_venue"`
	User            string        `env:"USER" envDefault:"postgres"`
	Password        string        `env:"PASSWORD"`
	MaxConns        int           `env:"MAX_CONNECTIONS" envDefault:"20"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNECTIONS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
}

// RedisConfig holds Redis recent-trade cache configuration
type RedisConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"6379"`
	Password     string `env:"PASSWORD"`
	DB           int    `env:"DB" envDefault:"0"`
	MaxRetries   int    `env:"MAX_RETRIES" envDefault:"3"`
	PoolSize     int    `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int    `env:"MIN_IDLE_CONNS" envDefault:"2"`
	TLSEnabled   bool   `env:"TLS_ENABLED" envDefault:"false"`
	MaxTrades    int    `env:"MAX_TRADES" envDefault:"10000"`
	TradesKey    string `env:"TRADES_KEY" envDefault:"trades:recent"`
}

// KafkaConfig holds trade topic producer configuration
type KafkaConfig struct {
	Enabled      bool          `env:"ENABLED" envDefault:"false"`
	Brokers      []string      `env:"BROKERS" envDefault:"localhost:9092"`
	Topic        string        `env:"TOPIC" envDefault:"trades"`
	BatchTimeout time.Duration `env:"BATCH_TIMEOUT" envDefault:"10ms"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
}

// Load loads configuration from .env file (if exists) and environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	return parse(env.Options{})
}

// LoadFromMap parses configuration from the given variables only, ignoring
// the process environment
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, "failed to parse configuration")
	}

	cfg.Logger.Level = strings.ToUpper(cfg.Logger.Level)
	cfg.Engine.InstrumentMode = strings.ToLower(cfg.Engine.InstrumentMode)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Enabled && c.Server.Port == "" {
		return errors.New("PORT cannot be empty")
	}

	// Validate engine config
	if c.Engine.Instruments < 1 {
		return errors.New("ENGINE_INSTRUMENTS must be > 0")
	}
	if c.Engine.InstrumentMode != "keyed" && c.Engine.InstrumentMode != "bucket" {
		return errors.Errorf("ENGINE_INSTRUMENT_MODE must be keyed or bucket, got %q", c.Engine.InstrumentMode)
	}
	if c.Engine.SymbolPrefix == "" {
		return errors.New("ENGINE_SYMBOL_PREFIX cannot be empty")
	}
	if c.Engine.CompactEvery < 0 {
		return errors.New("ENGINE_COMPACT_EVERY must be >= 0")
	}
	if c.Engine.OrderCleanupEnabled && c.Engine.OrderCleanupInterval <= 0 {
		return errors.New("ORDER_CLEANUP_INTERVAL must be > 0 when cleanup is enabled")
	}
	if c.Engine.TradeBufferSize < 1 || c.Engine.TradeBatchSize < 1 {
		return errors.New("TRADE_BUFFER_SIZE and TRADE_BATCH_SIZE must be > 0")
	}

	// Validate simulation config
	if c.Simulation.Brokers < 1 {
		return errors.New("SIM_BROKERS must be > 0")
	}
	if c.Simulation.Iterations < 0 || c.Simulation.BatchSize < 1 {
		return errors.New("SIM_ITERATIONS must be >= 0 and SIM_BATCH_SIZE > 0")
	}
	if c.Simulation.MinQuantity < 1 || c.Simulation.MaxQuantity < c.Simulation.MinQuantity {
		return errors.New("SIM_MIN_QUANTITY must be > 0 and <= SIM_MAX_QUANTITY")
	}
	if c.Simulation.MinPrice <= 0 || c.Simulation.MaxPrice < c.Simulation.MinPrice {
		return errors.New("SIM_MIN_PRICE must be > 0 and <= SIM_MAX_PRICE")
	}

	// Validate logger config
	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return errors.New("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	if c.Memory.Enabled && (c.Memory.MaxOrders < 1 || c.Memory.MaxTrades < 1) {
		return errors.New("MEMORY_MAX_ORDERS and MEMORY_MAX_TRADES must be > 0")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required when Kafka is enabled")
	}

	return nil
}
