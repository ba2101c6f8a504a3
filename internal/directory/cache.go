package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"cpfgate/internal/directory/metrics"
	"cpfgate/pkg/cpf"
	"cpfgate/pkg/platform/circuit"
)

const (
	DefaultCacheTTL = 5 * time.Minute
	cacheKeyPrefix  = "cpfgate:directory:"

	// sharedLookupTimeout bounds a collapsed lookup, which outlives any single caller.
	sharedLookupTimeout = 10 * time.Second
)

// CachedFinder keeps found records in Redis keyed by CPF hash and collapses
// concurrent misses for the same CPF. Redis failures never fail a lookup:
// the backing finder answers instead, and after repeated failures cache reads
// are skipped until writes succeed again.
type CachedFinder struct {
	next    Finder
	client  redis.Cmdable
	ttl     time.Duration
	group   singleflight.Group
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type CacheOption func(*CachedFinder)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedFinder) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedFinder) {
		c.metrics = m
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedFinder) {
		c.logger = logger
	}
}

func WithCacheBreaker(b *circuit.Breaker) CacheOption {
	return func(c *CachedFinder) {
		c.breaker = b
	}
}

func NewCachedFinder(next Finder, client redis.Cmdable, opts ...CacheOption) *CachedFinder {
	c := &CachedFinder{
		next:    next,
		client:  client,
		ttl:     DefaultCacheTTL,
		breaker: circuit.New("directory-cache", circuit.WithFailureThreshold(3)),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheKey(id string) string {
	return cacheKeyPrefix + cpf.Hash(id)
}

func (c *CachedFinder) FindByCPF(ctx context.Context, id string) (*Record, error) {
	key := cacheKey(id)
	if rec, ok := c.get(ctx, key); ok {
		c.metrics.IncrementHit()
		return rec, nil
	}
	c.metrics.IncrementMiss()

	ch := c.group.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		rec, err := c.next.FindByCPF(shared, id)
		if err != nil {
			return nil, err
		}
		c.set(shared, key, rec)
		return rec, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Record), nil
	}
}

func (c *CachedFinder) get(ctx context.Context, key string) (*Record, bool) {
	if c.breaker.IsOpen() {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.breaker.RecordSuccess()
		return nil, false
	}
	if err != nil {
		c.fail(ctx, "get", err)
		return nil, false
	}
	c.breaker.RecordSuccess()

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		c.logger.WarnContext(ctx, "discarding unreadable directory cache entry", "error", err)
		return nil, false
	}
	return &rec, true
}

func (c *CachedFinder) set(ctx context.Context, key string, rec *Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.fail(ctx, "set", err)
		return
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "directory cache recovered")
	}
}

func (c *CachedFinder) fail(ctx context.Context, op string, err error) {
	c.metrics.IncrementError(op)
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "directory cache disabled after repeated failures", "op", op, "error", err)
		return
	}
	c.logger.WarnContext(ctx, "directory cache unavailable", "op", op, "error", err)
}
