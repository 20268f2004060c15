package cache

import (
	"time"

	"trading-backend/src/interfaces"

	"github.com/go-redis/redis/v8"
)

// NewStore returns a Redis backed store when client is set, else a memory store.
func NewStore[T any](client *redis.Client, family string, retention time.Duration) interfaces.ICacheStore[T] {
	if client == nil {
		return NewMemoryStore[T]()
	}
	return NewRedisStore[T](client, family, retention)
}
