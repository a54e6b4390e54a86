package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures [NewRedisCache].
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration

	// DisableOnError turns the cache off after the first failed command
	// instead of paying a network timeout on every request.
	DisableOnError bool
}

// RedisCache is a Cache backed by Redis. If the server is unreachable at
// startup the cache runs disabled: every Get is a miss and every Set a
// no-op.
type RedisCache struct {
	client *redis.Client
	cfg    RedisConfig
	logger *log.Logger

	mu       sync.RWMutex
	disabled bool
}

// NewRedisCache connects to Redis and pings it. A failed ping is logged and
// yields a disabled cache rather than an error.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger *log.Logger) *RedisCache {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	logger = logger.WithPrefix("cache")

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, running without cache", "addr", cfg.Addr, "err", err)
		_ = client.Close()
		return &RedisCache{cfg: cfg, logger: logger, disabled: true}
	}

	logger.Info("redis cache connected", "addr", cfg.Addr)
	return &RedisCache{client: client, cfg: cfg, logger: logger}
}

// Available reports whether the cache is talking to Redis.
func (c *RedisCache) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !c.Available() {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.fail("get", err)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return c.fail("set", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if !c.Available() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return c.fail("delete", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// fail logs err and, if configured, trips the cache off. Network errors are
// marked retryable.
func (c *RedisCache) fail(op string, err error) error {
	c.logger.Debug("cache operation failed", "op", op, "err", err)
	if c.cfg.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn("disabling cache after redis error")
	}
	err = fmt.Errorf("redis %s: %w", op, err)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
