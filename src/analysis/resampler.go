package analysis

import (
	"sort"
	"time"

	"trading-backend/src/analysis/core"
	"trading-backend/src/models"
)

// CandleResampler merges broker bars into wider buckets aligned to the
// session open of each trading day.
type CandleResampler struct {
	Timezone   *time.Location
	OpenHour   int
	OpenMinute int
}

// -----------------------------------------------------------------------------

func NewCandleResampler(loc *time.Location, openHour, openMinute int) *CandleResampler {
	if loc == nil {
		loc = time.UTC
	}
	return &CandleResampler{Timezone: loc, OpenHour: openHour, OpenMinute: openMinute}
}

// -----------------------------------------------------------------------------

// bucketStart returns the start of the bucket holding t. Bars before the
// session open fall in the first bucket of the day.
func (r *CandleResampler) bucketStart(t time.Time, width time.Duration) time.Time {
	local := t.In(r.Timezone)
	open := time.Date(local.Year(), local.Month(), local.Day(), r.OpenHour, r.OpenMinute, 0, 0, r.Timezone)
	if local.Before(open) {
		return open
	}
	return open.Add(local.Sub(open) / width * width)
}

// -----------------------------------------------------------------------------

// Resample groups bars by bucket and merges each group. The input need not be
// sorted; the output is in time order. A non-positive width returns the bars
// unchanged.
func (r *CandleResampler) Resample(bars []models.MCandle, width time.Duration) []models.MCandle {
	if width <= 0 || len(bars) == 0 {
		return bars
	}

	sorted := make([]models.MCandle, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make([]models.MCandle, 0, len(sorted)/2+1)
	groupStart := 0
	current := r.bucketStart(sorted[0].Date, width)
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) {
			start := r.bucketStart(sorted[i].Date, width)
			if start.Equal(current) {
				continue
			}
			current = start
		}
		merged := core.MergeBars(sorted[groupStart:i])
		merged.Date = r.bucketStart(sorted[groupStart].Date, width)
		out = append(out, merged)
		groupStart = i
	}
	return out
}
