package analysis

import (
	"testing"
	"time"

	"trading-backend/src/analysis/core"
	"trading-backend/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(loc *time.Location, day, hour, minute int, open, high, low, close, volume float64) models.MCandle {
	return models.MCandle{
		Date: time.Date(2026, 1, day, hour, minute, 0, 0, loc),
		Open: open, High: high, Low: low, Close: close, Volume: volume,
	}
}

func TestResampleIntoFourHourBuckets(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	r := NewCandleResampler(ist, 9, 15)

	bars := []models.MCandle{
		hourly(ist, 5, 9, 15, 100, 105, 99, 104, 10),
		hourly(ist, 5, 10, 15, 104, 110, 103, 108, 20),
		hourly(ist, 5, 11, 15, 108, 109, 101, 102, 5),
		hourly(ist, 5, 12, 15, 102, 103, 100, 101, 5),
		hourly(ist, 5, 13, 15, 101, 102, 95, 96, 30),
		hourly(ist, 5, 14, 15, 96, 98, 94, 97, 40),
		hourly(ist, 6, 9, 15, 97, 99, 96, 98, 7),
	}
	// Shuffled input is fine.
	bars[0], bars[5] = bars[5], bars[0]

	out := r.Resample(bars, 4*time.Hour)
	require.Len(t, out, 3)

	assert.Equal(t, time.Date(2026, 1, 5, 9, 15, 0, 0, ist), out[0].Date)
	assert.Equal(t, 100.0, out[0].Open)
	assert.Equal(t, 110.0, out[0].High)
	assert.Equal(t, 99.0, out[0].Low)
	assert.Equal(t, 101.0, out[0].Close)
	assert.Equal(t, 40.0, out[0].Volume)

	assert.Equal(t, time.Date(2026, 1, 5, 13, 15, 0, 0, ist), out[1].Date)
	assert.Equal(t, 101.0, out[1].Open)
	assert.Equal(t, 97.0, out[1].Close)
	assert.Equal(t, 94.0, out[1].Low)
	assert.Equal(t, 70.0, out[1].Volume)

	assert.Equal(t, time.Date(2026, 1, 6, 9, 15, 0, 0, ist), out[2].Date)
	assert.Equal(t, 7.0, out[2].Volume)
}

func TestResamplePassThrough(t *testing.T) {
	r := NewCandleResampler(time.UTC, 9, 15)
	bars := []models.MCandle{hourly(time.UTC, 5, 9, 15, 1, 1, 1, 1, 1)}
	assert.Equal(t, bars, r.Resample(bars, 0))
	assert.Empty(t, r.Resample(nil, time.Hour))
}

func TestMergeBars(t *testing.T) {
	assert.Equal(t, models.MCandle{}, core.MergeBars(nil))

	one := hourly(time.UTC, 5, 9, 15, 10, 12, 8, 11, 3)
	assert.Equal(t, one, core.MergeBars([]models.MCandle{one}))
}
