package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zazaborisovi/laptomania/internal/domain"
)

const (
	laptopsKey = "laptops:all"
	laptopsTTL = 5 * time.Minute
)

func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// LaptopCache keeps the full catalog listing in redis as one JSON blob.
// Mutating handlers invalidate it; every failure here is soft — the
// caller falls back to Postgres.
type LaptopCache struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewLaptopCache(rdb *redis.Client, logger *slog.Logger) *LaptopCache {
	return &LaptopCache{rdb: rdb, logger: logger.With("component", "laptop_cache")}
}

func (c *LaptopCache) Get(ctx context.Context) ([]*domain.Laptop, bool) {
	raw, err := c.rdb.Get(ctx, laptopsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "cache get failed", "error", err)
		}
		return nil, false
	}

	var laptops []*domain.Laptop
	if err := json.Unmarshal(raw, &laptops); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return laptops, true
}

func (c *LaptopCache) Set(ctx context.Context, laptops []*domain.Laptop) {
	raw, err := json.Marshal(laptops)
	if err != nil {
		c.logger.WarnContext(ctx, "cache marshal failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, laptopsKey, raw, laptopsTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "error", err)
	}
}

func (c *LaptopCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, laptopsKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidate failed", "error", err)
	}
}
