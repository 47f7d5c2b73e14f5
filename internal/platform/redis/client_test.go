package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legaltrack/internal/platform/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("empty url disables redis", func(t *testing.T) {
		client, err := New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := New(ctx, config.RedisConfig{URL: "not a url"})
		assert.ErrorContains(t, err, "parse redis URL")
	})

	t.Run("connects and reports healthy", func(t *testing.T) {
		srv := miniredis.RunT(t)
		client, err := New(ctx, config.RedisConfig{URL: "redis://" + srv.Addr(), PoolSize: 2})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.NoError(t, client.Health(ctx))
	})

	t.Run("unreachable server", func(t *testing.T) {
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		_, err := New(ctx, config.RedisConfig{URL: "redis://" + addr})
		assert.ErrorContains(t, err, "redis ping failed")
	})
}
