//go:build integration

package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfgate/internal/platform/config"
	platformredis "cpfgate/internal/platform/redis"
	"cpfgate/pkg/testutil/containers"
)

func TestCachedFinderAgainstRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	client, err := platformredis.New(ctx, config.RedisConfig{URL: rc.Addr, PoolSize: 2})
	require.NoError(t, err)
	require.NotNil(t, client)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Health(ctx))

	backing := &countingFinder{rec: &Record{Username: "maria"}}
	c := NewCachedFinder(backing, client.Client, WithCacheTTL(time.Minute))

	for range 3 {
		got, err := c.FindByCPF(ctx, "52998224725")
		require.NoError(t, err)
		assert.Equal(t, "maria", got.Username)
	}
	assert.Equal(t, int32(1), backing.calls.Load())

	ttl, err := rc.Client.TTL(ctx, cacheKey("52998224725")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, rc.FlushAll(ctx))
	_, err = c.FindByCPF(ctx, "52998224725")
	require.NoError(t, err)
	assert.Equal(t, int32(2), backing.calls.Load())
}
