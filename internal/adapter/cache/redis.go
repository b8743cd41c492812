package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/locationiq-geocoder/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "locationiq:"

// RedisStore keeps address collections as JSON strings in Redis so multiple
// service instances share one cache.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store. A zero ttl stores without expiry.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (domain.AddressCollection, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var addrs domain.AddressCollection
	if err := json.Unmarshal(data, &addrs); err != nil {
		return nil, false, fmt.Errorf("decode cached addresses: %w", err)
	}
	return addrs, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, addrs domain.AddressCollection) error {
	data, err := json.Marshal(addrs)
	if err != nil {
		return fmt.Errorf("encode cached addresses: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// CheckReadiness pings Redis.
func (s *RedisStore) CheckReadiness(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
