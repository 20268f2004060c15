package cache

import (
	"context"
	"testing"
	"time"

	"trading-backend/src/logger"
	"trading-backend/src/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client, mr := newRedisClient(t)
	store := NewRedisStore[[]models.MInstrument](client, "instruments", time.Hour)
	ctx := context.Background()

	_, ok, err := store.Load(ctx, "NSE")
	require.NoError(t, err)
	assert.False(t, ok)

	fetched := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, "NSE", models.MCacheEntry[[]models.MInstrument]{
		Data:      []models.MInstrument{{InstrumentToken: 2953217, TradingSymbol: "TCS", Exchange: "NSE", InstrumentType: "EQ"}},
		FetchedAt: fetched,
	}))
	assert.True(t, mr.Exists("trading:instruments:NSE"))

	entry, ok, err := store.Load(ctx, "NSE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, fetched.Equal(entry.FetchedAt))
	require.Len(t, entry.Data, 1)
	assert.Equal(t, "TCS", entry.Data[0].TradingSymbol)

	mr.FastForward(2 * time.Hour)
	_, ok, err = store.Load(ctx, "NSE")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFamilyOnRedis(t *testing.T) {
	client, _ := newRedisClient(t)
	f := NewFamily[float64]("quotes", 3*time.Second, NewRedisStore[float64](client, "quotes", time.Minute), logger.NewLogger(nil, "Cache"))
	ctx := context.Background()

	calls := 0
	refresh := func(context.Context) (float64, error) {
		calls++
		return 3512.5, nil
	}
	for i := 0; i < 3; i++ {
		v, err := f.GetOrRefresh(ctx, "NSE:TCS", refresh)
		require.NoError(t, err)
		assert.Equal(t, 3512.5, v)
	}
	assert.Equal(t, 1, calls)
}

func TestFamilyTreatsBrokenBackendAsMiss(t *testing.T) {
	client, mr := newRedisClient(t)
	f := NewFamily[int]("positions", 5*time.Second, NewRedisStore[int](client, "positions", time.Minute), logger.NewLogger(nil, "Cache"))
	mr.Close()

	v, err := f.GetOrRefresh(context.Background(), "net", func(context.Context) (int, error) { return 4, nil })
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}
