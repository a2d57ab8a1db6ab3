package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domcart "github.com/arimulian/Revamp-Codeid-sales/internal/domain/cart"
)

var ErrCacheMiss = errors.New("cache miss")

const maxJitter = 5

type RedisCartCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
}

// NewRedisCartCache stores per-user cart listings for baseTTL plus up to
// a few minutes of jitter so entries do not expire together.
func NewRedisCartCache(client redis.UniversalClient, baseTTL time.Duration) *RedisCartCache {
	if baseTTL <= 0 {
		baseTTL = 15 * time.Minute
	}
	return &RedisCartCache{client: client, baseTTL: baseTTL}
}

func (c *RedisCartCache) Get(ctx context.Context, userID int64) ([]domcart.DetailedItem, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domcart.DetailedItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return items, nil
}

func (c *RedisCartCache) Set(ctx context.Context, userID int64, items []domcart.DetailedItem) error {
	if items == nil {
		items = []domcart.DetailedItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := c.baseTTL + time.Duration(rand.IntN(maxJitter))*time.Minute
	if err := c.client.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCartCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(userID int64) string {
	return "cart:" + strconv.FormatInt(userID, 10)
}
