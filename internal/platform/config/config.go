package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache drivers.
const (
	CacheDriverFS     = "fs"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
	CacheDriverSQLite = "sqlite"
)

// Asset drivers.
const (
	AssetDriverFS     = "fs"
	AssetDriverMemory = "memory"
	AssetDriverS3     = "s3"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Server  Server
	Backend Backend
	Cache   Cache
	Assets  Assets
	Redis   RedisConfig
	Log     Log
}

// Server captures the local HTTP API configuration.
type Server struct {
	Addr string `env:"LEGALTRACK_ADDR" envDefault:":8088"`
}

// Backend describes the remote case-tracking service.
type Backend struct {
	APIBase          string        `env:"LEGALTRACK_API_BASE" envDefault:"https://arbitr.kazna.tech"`
	ArchiveBase      string        `env:"LEGALTRACK_ARCHIVE_BASE" envDefault:"https://kad.arbitr.ru"`
	Timeout          time.Duration `env:"LEGALTRACK_HTTP_TIMEOUT" envDefault:"30s"`
	Token            string        `env:"LEGALTRACK_TOKEN"`
	OfflineThreshold int           `env:"LEGALTRACK_OFFLINE_THRESHOLD" envDefault:"3"`
}

// Cache selects and tunes the structured-response cache.
type Cache struct {
	Driver     string        `env:"LEGALTRACK_CACHE_DRIVER" envDefault:"fs"`
	Dir        string        `env:"LEGALTRACK_CACHE_DIR" envDefault:"./data/cache"`
	SQLitePath string        `env:"LEGALTRACK_SQLITE_PATH" envDefault:"./data/cache.db"`
	TTL        time.Duration `env:"LEGALTRACK_CACHE_TTL" envDefault:"168h"`
	OverlayCap int           `env:"LEGALTRACK_OVERLAY_CAP" envDefault:"10000"`
}

// Assets selects the PDF blob backend.
type Assets struct {
	Driver      string `env:"LEGALTRACK_ASSET_DRIVER" envDefault:"fs"`
	Dir         string `env:"LEGALTRACK_ASSET_DIR" envDefault:"./data/pdf"`
	S3Bucket    string `env:"LEGALTRACK_ASSET_S3_BUCKET"`
	S3Region    string `env:"LEGALTRACK_ASSET_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"LEGALTRACK_ASSET_S3_ENDPOINT"`
	S3PathStyle bool   `env:"LEGALTRACK_ASSET_S3_PATH_STYLE"`
}

// RedisConfig holds client settings for the redis cache driver.
type RedisConfig struct {
	URL          string        `env:"LEGALTRACK_REDIS_URL"`
	PoolSize     int           `env:"LEGALTRACK_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"LEGALTRACK_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"LEGALTRACK_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"LEGALTRACK_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"LEGALTRACK_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Log controls the slog handler.
type Log struct {
	Level  string `env:"LEGALTRACK_LOG_LEVEL" envDefault:"info"`
	Format string `env:"LEGALTRACK_LOG_FORMAT" envDefault:"json"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load builds and validates a Config so main stays lean.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects driver combinations that cannot start.
func (c Config) Validate() error {
	switch c.Cache.Driver {
	case CacheDriverFS, CacheDriverMemory, CacheDriverSQLite:
	case CacheDriverRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("cache driver %q requires LEGALTRACK_REDIS_URL", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Assets.Driver {
	case AssetDriverFS, AssetDriverMemory:
	case AssetDriverS3:
		if c.Assets.S3Bucket == "" {
			return fmt.Errorf("asset driver %q requires LEGALTRACK_ASSET_S3_BUCKET", c.Assets.Driver)
		}
	default:
		return fmt.Errorf("unknown asset driver %q", c.Assets.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Cache.OverlayCap <= 0 {
		return fmt.Errorf("overlay cap must be positive, got %d", c.Cache.OverlayCap)
	}
	return nil
}
