package cache

import (
	"context"
	"sort"
	"strings"
	"time"

	"trading-backend/src/interfaces"
	"trading-backend/src/logger"
	"trading-backend/src/models"

	"golang.org/x/sync/singleflight"
)

// Family is one TTL cache (instruments, quotes, positions, candles or index
// lists). A value is refreshed only when it is missing or at least TTL old.
// Concurrent refreshes of the same key are collapsed into one call.
type Family[T any] struct {
	Name string
	TTL  time.Duration

	// StaleOnError serves the last known value, or the zero value, when a
	// refresh fails instead of returning the error.
	StaleOnError bool

	store  interfaces.ICacheStore[T]
	group  singleflight.Group
	now    func() time.Time
	logger *logger.Logger
}

func NewFamily[T any](name string, ttl time.Duration, store interfaces.ICacheStore[T], log *logger.Logger) *Family[T] {
	return &Family[T]{
		Name:   name,
		TTL:    ttl,
		store:  store,
		now:    time.Now,
		logger: log,
	}
}

// SetClock replaces the time source.
func (f *Family[T]) SetClock(now func() time.Time) {
	f.now = now
}

// -----------------------------------------------------------------------------

func (f *Family[T]) load(ctx context.Context, key string) (models.MCacheEntry[T], bool) {
	entry, ok, err := f.store.Load(ctx, key)
	if err != nil {
		// An unreadable backend is a miss, not a failed request.
		f.logger.Warning("%s cache read for %s failed: %v", f.Name, key, err)
		return entry, false
	}
	return entry, ok
}

func (f *Family[T]) save(ctx context.Context, key string, data T) {
	entry := models.MCacheEntry[T]{Data: data, FetchedAt: f.now()}
	if err := f.store.Save(ctx, key, entry); err != nil {
		f.logger.Warning("%s cache write for %s failed: %v", f.Name, key, err)
	}
}

// -----------------------------------------------------------------------------

// GetOrRefresh returns the cached value for key, calling refresh when the value
// is missing or stale.
func (f *Family[T]) GetOrRefresh(ctx context.Context, key string, refresh func(ctx context.Context) (T, error)) (T, error) {
	entry, ok := f.load(ctx, key)
	if ok && !entry.Stale(f.now(), f.TTL) {
		return entry.Data, nil
	}

	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		data, err := refresh(ctx)
		if err != nil {
			return nil, err
		}
		f.save(ctx, key, data)
		return data, nil
	})
	if err != nil {
		if f.StaleOnError {
			f.logger.Warning("%s refresh for %s failed, serving last known value: %v", f.Name, key, err)
			return entry.Data, nil
		}
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// -----------------------------------------------------------------------------

// GetMany resolves several keys at once. Fresh keys come from the store; every
// missing or stale key is handed to one refresh call. Keys that refresh does
// not return are absent from the result.
func (f *Family[T]) GetMany(ctx context.Context, keys []string, refresh func(ctx context.Context, missing []string) (map[string]T, error)) (map[string]T, error) {
	result := make(map[string]T, len(keys))
	stale := make(map[string]models.MCacheEntry[T])
	var missing []string

	now := f.now()
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entry, ok := f.load(ctx, key)
		if ok && !entry.Stale(now, f.TTL) {
			result[key] = entry.Data
			continue
		}
		if ok {
			stale[key] = entry
		}
		missing = append(missing, key)
	}

	if len(missing) == 0 {
		return result, nil
	}

	sort.Strings(missing)
	v, err, _ := f.group.Do(strings.Join(missing, ","), func() (interface{}, error) {
		fetched, err := refresh(ctx, missing)
		if err != nil {
			return nil, err
		}
		for key, data := range fetched {
			f.save(ctx, key, data)
		}
		return fetched, nil
	})
	if err != nil {
		if f.StaleOnError {
			f.logger.Warning("%s refresh for %d keys failed, serving last known values: %v", f.Name, len(missing), err)
			for key, entry := range stale {
				result[key] = entry.Data
			}
			return result, nil
		}
		return nil, err
	}

	for key, data := range v.(map[string]T) {
		result[key] = data
	}
	return result, nil
}
