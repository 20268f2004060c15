package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trading-backend/src/models"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "trading:"

// RedisStore keeps JSON encoded entries in Redis so that several processes
// share one cache. Keys expire after retention, which must outlive the
// family TTL for stale fallbacks to find anything.
type RedisStore[T any] struct {
	client    *redis.Client
	family    string
	retention time.Duration
}

func NewRedisStore[T any](client *redis.Client, family string, retention time.Duration) *RedisStore[T] {
	return &RedisStore[T]{
		client:    client,
		family:    family,
		retention: retention,
	}
}

func (s *RedisStore[T]) key(key string) string {
	return keyPrefix + s.family + ":" + key
}

// -----------------------------------------------------------------------------

func (s *RedisStore[T]) Load(ctx context.Context, key string) (models.MCacheEntry[T], bool, error) {
	var entry models.MCacheEntry[T]

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, err
	}

	if err := json.Unmarshal(data, &entry); err != nil {
		return entry, false, err
	}
	return entry, true, nil
}

// -----------------------------------------------------------------------------

func (s *RedisStore[T]) Save(ctx context.Context, key string, entry models.MCacheEntry[T]) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, s.retention).Err()
}
