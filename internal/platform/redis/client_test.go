package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/platform/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without URL", func(t *testing.T) {
		client, err := Open(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("health follows the server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := Open(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		check := HealthCheck(client)
		require.NoError(t, check(ctx))
		mr.Close()
		assert.Error(t, check(ctx))
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := Open(ctx, config.RedisConfig{URL: "://nope"})
		require.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := Open(ctx, config.RedisConfig{URL: "redis://" + addr})
		require.Error(t, err)
	})
}
