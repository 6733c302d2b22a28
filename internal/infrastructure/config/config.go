package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Token store backends.
const (
	TokenStoreBolt   = "bolt"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	API      APIConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Tracking TrackingConfig

	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:5000/api"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

type StoreConfig struct {
	Backend  string `env:"TOKEN_STORE, default=bolt"`
	BoltPath string `env:"BOLT_PATH,   default=data/storefront.db"`
}

// MongoConfig enables the observation audit log. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=storefront"`
}

// RedisConfig is used by the redis token store and by observation dedup.
// An empty Addr disables Redis unless the token store requires it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type TrackingConfig struct {
	OrderInterval  time.Duration `env:"ORDER_POLL_INTERVAL,         default=30s"`
	ActiveInterval time.Duration `env:"ACTIVE_ORDERS_POLL_INTERVAL, default=60s"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case TokenStoreBolt:
		if c.Store.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH is required for the bolt token store")
		}
	case TokenStoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis token store")
		}
	case TokenStoreMemory:
	default:
		return fmt.Errorf("unknown TOKEN_STORE %q", c.Store.Backend)
	}
	if c.Tracking.OrderInterval <= 0 || c.Tracking.ActiveInterval <= 0 {
		return fmt.Errorf("poll intervals must be positive")
	}
	return nil
}
