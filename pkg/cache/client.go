package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/justgold/justgold-backend/pkg/config"
	"github.com/justgold/justgold-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned by writes once the cache has been switched off for
// the remainder of the process lifetime.
var ErrDisabled = errors.New("cache disabled")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps a Redis connection used as an advisory response cache. The
// cache never participates in request outcomes: a client that fails its
// initial ping is permanently disabled rather than retried, and all
// subsequent operations become cheap no-ops.
type Client struct {
	store    cmdable
	raw      *redis.Client
	disabled atomic.Bool
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// New bootstraps the cache client. Unlike the database, a failed connection
// is not fatal: the returned client is marked disabled and the error is
// logged once.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) *Client {
	client := &Client{}

	opts, err := optionsFromConfig(cfg)
	if err != nil {
		client.disable(ctx, logg, err)
		return client
	}

	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		client.disable(ctx, logg, fmt.Errorf("ping redis: %w", err))
		return client
	}

	client.store = raw
	client.raw = raw
	if logg != nil {
		logg.Info(ctx, "cache connection established")
	}
	return client
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (c *Client) disable(ctx context.Context, logg *logger.Logger, err error) {
	if c.disabled.CompareAndSwap(false, true) && logg != nil {
		logg.Warn(ctx, fmt.Sprintf("cache disabled for process lifetime: %v", err))
	}
}

// Disabled reports whether the cache has been switched off.
func (c *Client) Disabled() bool {
	return c == nil || c.disabled.Load()
}

// Get returns the cached value and whether it was present. A disabled cache
// or any backend error reads as a miss.
func (c *Client) Get(ctx context.Context, key string) (string, bool) {
	if c.Disabled() || c.store == nil {
		return "", false
	}
	value, err := c.store.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.disabled.Store(true)
		}
		return "", false
	}
	return value, true
}

// Set stores a value with the provided TTL. Callers treat failures as
// advisory and only log them.
func (c *Client) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c.Disabled() || c.store == nil {
		return ErrDisabled
	}
	if err := c.store.Set(ctx, key, value, ttl).Err(); err != nil {
		c.disabled.Store(true)
		return err
	}
	return nil
}

// Del removes the provided keys, best effort.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.Disabled() || c.store == nil {
		return ErrDisabled
	}
	return c.store.Del(ctx, keys...).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.Disabled() || c.store == nil {
		return ErrDisabled
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if one was established.
func (c *Client) Close() error {
	if c == nil || c.raw == nil {
		return nil
	}
	return c.raw.Close()
}
