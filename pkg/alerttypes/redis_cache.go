package alerttypes

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores the alert-type snapshot as a JSON document in Redis.
//
// A missing key, a read error, or an undecodable payload are all reported as
// a cache miss: the registry then rebuilds the snapshot from the store and
// overwrites the bad value on the next Write. Entries carry no TTL because
// coherency is guaranteed by write-invalidate in the registry, not by expiry.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a snapshot cache backed by the given Redis client.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Read(ctx context.Context, key string) (map[string]AlertType, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var snapshot map[string]AlertType
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// Corrupt cache entries behave like misses; the registry will
		// rewrite the key with a fresh snapshot.
		return nil, false, nil
	}

	return snapshot, true, nil
}

func (c *RedisCache) Write(ctx context.Context, key string, snapshot map[string]AlertType) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, raw, 0).Err()
}
