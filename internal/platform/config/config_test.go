package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envTestConfig struct {
	Port int `env:"LEGALTRACK_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("LEGALTRACK_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8088", cfg.Server.Addr)
	assert.Equal(t, "https://arbitr.kazna.tech", cfg.Backend.APIBase)
	assert.Equal(t, "https://kad.arbitr.ru", cfg.Backend.ArchiveBase)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 7*24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, CacheDriverFS, cfg.Cache.Driver)
	assert.Equal(t, 10000, cfg.Cache.OverlayCap)
	assert.Equal(t, AssetDriverFS, cfg.Assets.Driver)
}

func TestValidate(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)

	t.Run("redis driver without url", func(t *testing.T) {
		cfg := base
		cfg.Cache.Driver = CacheDriverRedis
		assert.ErrorContains(t, cfg.Validate(), "LEGALTRACK_REDIS_URL")
	})

	t.Run("redis driver with url", func(t *testing.T) {
		cfg := base
		cfg.Cache.Driver = CacheDriverRedis
		cfg.Redis.URL = "redis://localhost:6379"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown cache driver", func(t *testing.T) {
		cfg := base
		cfg.Cache.Driver = "postgres"
		assert.ErrorContains(t, cfg.Validate(), "unknown cache driver")
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		cfg := base
		cfg.Assets.Driver = AssetDriverS3
		assert.ErrorContains(t, cfg.Validate(), "LEGALTRACK_ASSET_S3_BUCKET")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		cfg := base
		cfg.Cache.TTL = 0
		assert.ErrorContains(t, cfg.Validate(), "cache ttl")
	})

	t.Run("non-positive overlay cap", func(t *testing.T) {
		cfg := base
		cfg.Cache.OverlayCap = -1
		assert.ErrorContains(t, cfg.Validate(), "overlay cap")
	})
}
