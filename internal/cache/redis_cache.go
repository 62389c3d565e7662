package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/clothing-store/internal/config"
	"github.com/aaravmahajanofficial/clothing-store/internal/models"
	"github.com/redis/go-redis/v9"
)

// KEYS[1] cart, KEYS[2] version marker; ARGV[1] payload, ARGV[2] version, ARGV[3] ttl ms.
var setScript = redis.NewScript(`
local written = tonumber(redis.call('GET', KEYS[2]) or '-1')
if written > tonumber(ARGV[2]) then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// KEYS[1] cart, KEYS[2] version marker; ARGV[1] version, ARGV[2] ttl ms.
var invalidateScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
local written = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) > written then
	if tonumber(ARGV[2]) > 0 then
		redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[2])
	else
		redis.call('SET', KEYS[2], ARGV[1])
	end
end
return 1
`)

type redisCartCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

func NewRedisCartCache(client *redis.Client, cfg *config.CacheConfig) CartCache {
	return &redisCartCache{
		client: client,
		cfg:    cfg,
	}
}

func (r *redisCartCache) Get(ctx context.Context, userID string) (*models.Cart, bool, error) {
	key := Key(CartKeyPrefix, userID)

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}

	var cart models.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cache data for key %s: %w", key, err)
	}

	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	return &cart, true, nil
}

// Set stores the cart unless a newer version has already been written.
func (r *redisCartCache) Set(ctx context.Context, cart *models.Cart) error {
	key := Key(CartKeyPrefix, cart.UserID)

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	keys := []string{key, VersionKey(cart.UserID)}

	if err := setScript.Run(ctx, r.client, keys, string(data), cart.Version, r.ttlMillis()).Err(); err != nil {
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}

	return nil
}

func (r *redisCartCache) Invalidate(ctx context.Context, userID string, version int64) error {
	key := Key(CartKeyPrefix, userID)
	keys := []string{key, VersionKey(userID)}

	if err := invalidateScript.Run(ctx, r.client, keys, version, r.ttlMillis()).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisCartCache) ttlMillis() int64 {
	return int64(r.cfg.DefaultTTL / time.Millisecond)
}
