package directory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpfgate/internal/directory/metrics"
	"cpfgate/pkg/platform/sentinel"
)

type countingFinder struct {
	calls atomic.Int32
	rec   *Record
	err   error
	delay time.Duration
}

func (f *countingFinder) FindByCPF(context.Context, string) (*Record, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.rec, f.err
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedFinder(t *testing.T) {
	ctx := context.Background()
	rec := &Record{Username: "maria", Attributes: map[string]string{"email": "maria@example.com"}}

	t.Run("second lookup is served from cache", func(t *testing.T) {
		mr, client := newRedis(t)
		backing := &countingFinder{rec: rec}
		m := metrics.New(prometheus.NewRegistry())
		c := NewCachedFinder(backing, client, WithCacheMetrics(m), WithCacheTTL(time.Minute))

		got, err := c.FindByCPF(ctx, "52998224725")
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		got, err = c.FindByCPF(ctx, "52998224725")
		require.NoError(t, err)
		assert.Equal(t, "maria", got.Username)
		assert.Equal(t, int32(1), backing.calls.Load())
		assert.InDelta(t, 1, testutil.ToFloat64(m.CacheHits), 0)

		key := cacheKey("52998224725")
		assert.True(t, mr.Exists(key))
		assert.NotContains(t, key, "52998224725")
		assert.Equal(t, time.Minute, mr.TTL(key))
	})

	t.Run("entries expire", func(t *testing.T) {
		mr, client := newRedis(t)
		backing := &countingFinder{rec: rec}
		c := NewCachedFinder(backing, client, WithCacheTTL(time.Minute))

		_, _ = c.FindByCPF(ctx, "52998224725")
		mr.FastForward(2 * time.Minute)
		_, _ = c.FindByCPF(ctx, "52998224725")
		assert.Equal(t, int32(2), backing.calls.Load())
	})

	t.Run("not found is not cached", func(t *testing.T) {
		_, client := newRedis(t)
		backing := &countingFinder{err: sentinel.ErrNotFound}
		c := NewCachedFinder(backing, client)

		_, err := c.FindByCPF(ctx, "52998224725")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = c.FindByCPF(ctx, "52998224725")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		assert.Equal(t, int32(2), backing.calls.Load())
	})

	t.Run("redis outage still returns backing result", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		mr.Close()
		backing := &countingFinder{rec: rec}
		c := NewCachedFinder(backing, client)

		for i := 0; i < 5; i++ {
			got, err := c.FindByCPF(ctx, "52998224725")
			require.NoError(t, err)
			assert.Equal(t, "maria", got.Username)
		}
		assert.Equal(t, int32(5), backing.calls.Load())
		assert.True(t, c.breaker.IsOpen())
	})

	t.Run("concurrent misses collapse", func(t *testing.T) {
		_, client := newRedis(t)
		backing := &countingFinder{rec: rec, delay: 50 * time.Millisecond}
		c := NewCachedFinder(backing, client)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := c.FindByCPF(ctx, "52998224725")
				assert.NoError(t, err)
				assert.Equal(t, "maria", got.Username)
			}()
		}
		wg.Wait()
		assert.Less(t, backing.calls.Load(), int32(10))
	})
	t.Run("cancelled caller does not cancel the shared lookup", func(t *testing.T) {
		mr, client := newRedis(t)
		backing := &gatedFinder{rec: rec, entered: make(chan struct{}), release: make(chan struct{})}
		c := NewCachedFinder(backing, client)

		first, cancel := context.WithCancel(ctx)
		firstErr := make(chan error, 1)
		go func() {
			_, err := c.FindByCPF(first, "52998224725")
			firstErr <- err
		}()
		<-backing.entered

		type result struct {
			rec *Record
			err error
		}
		second := make(chan result, 1)
		go func() {
			got, err := c.FindByCPF(ctx, "52998224725")
			second <- result{got, err}
		}()

		cancel()
		assert.ErrorIs(t, <-firstErr, context.Canceled)

		close(backing.release)
		res := <-second
		require.NoError(t, res.err)
		assert.Equal(t, "maria", res.rec.Username)
		assert.False(t, backing.cancelled.Load())
		assert.True(t, mr.Exists(cacheKey("52998224725")))
	})
}

// gatedFinder blocks until release is closed and records whether its context
// ended first.
type gatedFinder struct {
	rec       *Record
	entered   chan struct{}
	release   chan struct{}
	once      sync.Once
	cancelled atomic.Bool
}

func (f *gatedFinder) FindByCPF(ctx context.Context, _ string) (*Record, error) {
	f.once.Do(func() { close(f.entered) })
	select {
	case <-f.release:
	case <-ctx.Done():
	}
	if err := ctx.Err(); err != nil {
		f.cancelled.Store(true)
		return nil, err
	}
	return f.rec, nil
}
