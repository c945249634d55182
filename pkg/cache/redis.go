package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis. Entry expiry is delegated to Redis.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithKeyPrefix namespaces every key written by the cache.
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache connects to addr, which is either host:port or a
// redis:// / rediss:// URL, and verifies the connection.
func NewRedisCache(ctx context.Context, addr string, opts ...RedisOption) (*RedisCache, error) {
	var o *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		o = parsed
	} else {
		o = &redis.Options{Addr: addr}
	}

	c := NewRedisCacheFromClient(redis.NewClient(o), opts...)
	err := withRetry(ctx, func() error {
		return classify(c.client.Ping(ctx).Err())
	})
	if err != nil {
		_ = c.client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", o.Addr, err)
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client, e.g. a cluster client.
func NewRedisCacheFromClient(client redis.UniversalClient, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a value. Connection failures are retried with backoff.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := withRetry(ctx, func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = b
		return nil
	})
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value; ttl <= 0 keeps it until deleted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return withRetry(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return withRetry(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks connection-level failures as transient ErrUnavailable.
// redis.Nil (a missing key) and command errors pass through unchanged.
func classify(err error) error {
	if err == nil || stderrors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) || stderrors.Is(err, redis.ErrClosed) {
		return transient(fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
