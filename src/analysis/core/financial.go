package core

import (
	"math"

	"trading-backend/src/models"
)

// -----------------------------------------------------------------------------

// MergeBars folds consecutive bars into one: first open, last close, extreme
// high and low, summed volume. Date is the first bar's date.
func MergeBars(bars []models.MCandle) models.MCandle {
	if len(bars) == 0 {
		return models.MCandle{}
	}

	merged := models.MCandle{
		Date:  bars[0].Date,
		Open:  bars[0].Open,
		Close: bars[len(bars)-1].Close,
		High:  -math.MaxFloat64,
		Low:   math.MaxFloat64,
	}
	for _, b := range bars {
		merged.High = math.Max(merged.High, b.High)
		merged.Low = math.Min(merged.Low, b.Low)
		merged.Volume += b.Volume
	}
	return merged
}
