package models

import "time"

// MCacheEntry is a cached value with the time it was fetched.
type MCacheEntry[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Stale reports whether the entry is at least ttl old.
func (e MCacheEntry[T]) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) >= ttl
}
