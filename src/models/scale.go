package models

import "time"

// Scale is a candle granularity as exposed to the dashboard.
type Scale string

const (
	Scale1m  Scale = "1m"
	Scale5m  Scale = "5m"
	Scale15m Scale = "15m"
	Scale30m Scale = "30m"
	Scale1h  Scale = "1h"
	Scale4h  Scale = "4h"
	Scale1d  Scale = "1d"

	DefaultScale = Scale5m
)

type scaleSpec struct {
	interval     string
	lookbackDays int
	bucket       time.Duration
}

// Broker intervals and the number of trading days of bars to request.
// The broker has no 4-hour bars, so 4h merges hourly bars into 4h buckets.
var scaleSpecs = map[Scale]scaleSpec{
	Scale1m:  {"minute", 1, 0},
	Scale5m:  {"5minute", 2, 0},
	Scale15m: {"15minute", 5, 0},
	Scale30m: {"30minute", 10, 0},
	Scale1h:  {"60minute", 20, 0},
	Scale4h:  {"60minute", 60, 4 * time.Hour},
	Scale1d:  {"day", 250, 0},
}

// Scales lists every supported scale in display order.
var Scales = []Scale{Scale1m, Scale5m, Scale15m, Scale30m, Scale1h, Scale4h, Scale1d}

// ParseScale maps a query value to a scale. Empty means the default scale.
func ParseScale(s string) (Scale, bool) {
	if s == "" {
		return DefaultScale, true
	}
	if _, ok := scaleSpecs[Scale(s)]; ok {
		return Scale(s), true
	}
	return "", false
}

// Interval is the broker interval name for the scale.
func (s Scale) Interval() string {
	return scaleSpecs[s].interval
}

// LookbackDays is how many trading days a candle window spans.
func (s Scale) LookbackDays() int {
	return scaleSpecs[s].lookbackDays
}

// Bucket is the width broker bars are merged into. Zero means broker bars are
// served unchanged.
func (s Scale) Bucket() time.Duration {
	return scaleSpecs[s].bucket
}
