package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taskhive/taskhive-backend/pkg/config"
)

// keyNamespace prefixes every key so a shared redis can host multiple
// environments without collisions.
const keyNamespace = "th"

// cmdable captures the subset of redis commands the backend relies on,
// letting tests swap in a stub without a live server.
type cmdable interface {
	Ping(ctx context.Context) *goredis.StatusCmd
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
	Close() error
}

// Client wraps the go-redis client with namespaced helpers.
type Client struct {
	rdb cmdable
}

// New dials redis using the provided configuration.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

func buildKey(parts ...string) string {
	return keyNamespace + ":" + strings.Join(parts, ":")
}

// Ping verifies the connection is healthy.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get fetches a namespaced key. Returns ("", false, nil) on a miss.
func (c *Client) Get(ctx context.Context, parts ...string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, buildKey(parts...)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores a namespaced key with the provided TTL.
func (c *Client) Set(ctx context.Context, value string, ttl time.Duration, parts ...string) error {
	return c.rdb.Set(ctx, buildKey(parts...), value, ttl).Err()
}

// SetNX stores a namespaced key only when it does not already exist. It
// returns true when this caller created the key.
func (c *Client) SetNX(ctx context.Context, value string, ttl time.Duration, parts ...string) (bool, error) {
	return c.rdb.SetNX(ctx, buildKey(parts...), value, ttl).Result()
}

// Del removes a namespaced key.
func (c *Client) Del(ctx context.Context, parts ...string) error {
	return c.rdb.Del(ctx, buildKey(parts...)).Err()
}

// IdempotencyKey claims an idempotency token. It returns true when the
// caller is the first to present the token within the TTL window.
func (c *Client) IdempotencyKey(ctx context.Context, token string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, buildKey("idempotency", token), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claiming idempotency key: %w", err)
	}
	return ok, nil
}
