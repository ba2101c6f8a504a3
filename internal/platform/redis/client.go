// Package redis builds the optional go-redis client behind the directory cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cpfgate/internal/platform/config"
)

// Client is a pinged *redis.Client.
type Client struct {
	*redis.Client
}

// New dials cfg.URL and pings it. An empty URL disables the cache and yields
// (nil, nil).
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{Client: rdb}, nil
}

func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	// URL query parameters win over zero-valued settings
	opts.MinIdleConns = max(opts.MinIdleConns, cfg.MinIdleConns)
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	for dst, src := range map[*time.Duration]time.Duration{
		&opts.DialTimeout:  cfg.DialTimeout,
		&opts.ReadTimeout:  cfg.ReadTimeout,
		&opts.WriteTimeout: cfg.WriteTimeout,
	} {
		if src > 0 {
			*dst = src
		}
	}
	return opts, nil
}

// Health pings the server; it backs the /health "redis" check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
