package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl keeps entries forever.
func NewRedisCache(rdb redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: "georesolve:geocode:", ttl: ttl}
}

// DialRedisCache parses a redis:// URL and pings the server.
func DialRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: parse redis url")
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrap(err, "geocode: ping redis")
	}
	return NewRedisCache(rdb, ttl), nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]Place, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "geocode: redis get")
	}
	var places []Place
	if err := json.Unmarshal(b, &places); err != nil {
		return nil, false, eris.Wrap(err, "geocode: decode cached places")
	}
	return places, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, places []Place) error {
	if places == nil {
		places = []Place{}
	}
	b, err := json.Marshal(places)
	if err != nil {
		return eris.Wrap(err, "geocode: encode places")
	}
	if err := c.rdb.Set(ctx, c.prefix+key, b, c.ttl).Err(); err != nil {
		return eris.Wrap(err, "geocode: redis set")
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
