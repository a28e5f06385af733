package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a redis-backed TTL cache for the public listing endpoints. Cache
// problems never fail a request; a miss is returned instead.
type Cache struct {
	redisdb *redis.Client
	ttl     time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Cache{redisdb: redisdb, ttl: ttl}
}

// this ping function checks redis connectivity

func (c *Cache) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.redisdb.Close()
}

// GetJSON loads key into dest, reporting whether it was a hit.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}

	raw, err := c.redisdb.Get(ctx, key).Bytes()

	if err != nil {
		return false
	}

	return json.Unmarshal(raw, dest) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, val any) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(val)

	if err != nil {
		return
	}

	_ = c.redisdb.Set(ctx, key, raw, c.ttl).Err()
}

// Invalidate drops keys after a write to the backing table.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	_ = c.redisdb.Del(ctx, keys...).Err()
}
