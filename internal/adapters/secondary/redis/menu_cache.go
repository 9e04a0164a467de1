package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cafeflow/backend/internal/core/domain"
	"github.com/cafeflow/backend/internal/core/ports"
)

const menuCacheKey = "cafeflow:menu:available"

// MenuCache caches the public menu in Redis. Failures are treated as cache
// misses so a Redis outage never takes the menu endpoint down.
type MenuCache struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ports.MenuCache = (*MenuCache)(nil)

// NewMenuCache connects to Redis using the given URL.
func NewMenuCache(url string, logger *slog.Logger) (*MenuCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &MenuCache{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Get returns the cached menu, or a miss.
func (c *MenuCache) Get(ctx context.Context) ([]domain.MenuItem, bool) {
	data, err := c.client.Get(ctx, menuCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("menu cache read failed", "error", err)
		}
		return nil, false
	}

	var items []domain.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("menu cache held invalid data", "error", err)
		return nil, false
	}

	return items, true
}

// Set stores the menu with the given TTL.
func (c *MenuCache) Set(ctx context.Context, items []domain.MenuItem, ttl time.Duration) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("failed to marshal menu for cache", "error", err)
		return
	}

	if err := c.client.Set(ctx, menuCacheKey, data, ttl).Err(); err != nil {
		c.logger.Warn("menu cache write failed", "error", err)
	}
}

// Invalidate drops the cached menu.
func (c *MenuCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, menuCacheKey).Err(); err != nil {
		c.logger.Warn("menu cache invalidation failed", "error", err)
	}
}

// Ping verifies Redis connectivity.
func (c *MenuCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *MenuCache) Close() error {
	return c.client.Close()
}
