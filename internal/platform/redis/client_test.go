package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfgate/internal/platform/config"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("empty url means redis is disabled", func(t *testing.T) {
		client, err := New(ctx, config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects and pings", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client, err := New(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2})
		require.NoError(t, err)
		require.NotNil(t, client)
		defer client.Close()
		assert.NoError(t, client.Health(ctx))
	})

	t.Run("invalid url is rejected", func(t *testing.T) {
		_, err := New(ctx, config.RedisConfig{URL: "://nope"})
		assert.Error(t, err)
	})

	t.Run("unreachable server fails ping", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		addr := mr.Addr()
		mr.Close()
		_, err = New(ctx, config.RedisConfig{URL: "redis://" + addr})
		assert.Error(t, err)
	})
}

func TestOptions(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://localhost:6379/2?dial_timeout=3s",
		PoolSize:    7,
		ReadTimeout: 250 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 250*time.Millisecond, opts.ReadTimeout)
}
