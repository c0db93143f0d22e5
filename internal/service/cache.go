package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"restaurant-service/internal/search"
)

const generationKey = "restaurants:generation"

// Cache is the subset of the redis client used for cache-aside reads.
// *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// restaurantCache namespaces every entry under a generation number. A write
// bumps the generation, which orphans all earlier entries until they expire.
type restaurantCache struct {
	rdb Cache
	ttl time.Duration
}

func (c *restaurantCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *restaurantCache) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

func (c *restaurantCache) key(ctx context.Context, suffix string) (string, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("restaurants:%s:%s", gen, suffix), nil
}

// load reads key into dst. It reports false on a miss or any cache failure.
func (c *restaurantCache) load(ctx context.Context, suffix string, dst interface{}) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	key, err := c.key(ctx, suffix)
	if err != nil {
		logger.Error().Err(err).Msg("Error reading cache generation")
		return "", false
	}

	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error getting %s from cache", key)
		}
		return key, false
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		logger.Error().Err(err).Msgf("Error unmarshalling %s", key)
		return key, false
	}
	return key, true
}

func (c *restaurantCache) store(ctx context.Context, key string, v interface{}) {
	if !c.enabled() || key == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Msgf("Error marshalling %s", key)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error setting %s in cache", key)
	}
}

func (c *restaurantCache) invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		logger.Error().Err(err).Msg("Error bumping cache generation")
	}
}

// GenerateCacheKey hashes the normalized filter set so equivalent searches
// share one entry.
func GenerateCacheKey(f search.Filters) string {
	f = f.Trimmed()
	raw := fmt.Sprintf("name=%s|city=%s|state=%s|type=%s",
		search.Normalize(f.Name), search.Normalize(f.City), search.Normalize(f.State), search.Normalize(f.Type))
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
