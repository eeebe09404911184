package features

import (
	"time"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// TrailingWindowBars is the number of 1-minute bars in the trailing
// volatility window (24 hours).
const TrailingWindowBars = 24 * 60

// VolatilitySnapshot holds the two regime scalars computed once per run
// from the trailing window. X is the maximum relative high-low range over
// 4-hour buckets, Y the same over 1-hour buckets.
type VolatilitySnapshot struct {
	X float64
	Y float64
}

// ResampleRange groups bars into fixed wall-clock buckets and returns the
// maximum of (max(high) - min(low)) / min(low) across non-empty buckets.
// Buckets with no bars are excluded from the max, never counted as zero.
func ResampleRange(bars []types.OHLCV, bucket time.Duration) (float64, error) {
	if bucket <= 0 {
		return 0, boterrors.New(boterrors.ErrorCategoryConfiguration, "features", "resample_range", "bucket must be positive")
	}
	if len(bars) == 0 {
		return 0, boterrors.ErrInsufficientData
	}

	span := bars[len(bars)-1].Timestamp.Sub(bars[0].Timestamp) + time.Minute
	if span < bucket {
		return 0, boterrors.ErrInsufficientData
	}

	type bucketRange struct {
		high float64
		low  float64
	}
	ranges := make(map[int64]*bucketRange)
	for _, bar := range bars {
		key := bar.Timestamp.Truncate(bucket).Unix()
		r, ok := ranges[key]
		if !ok {
			ranges[key] = &bucketRange{high: bar.High, low: bar.Low}
			continue
		}
		if bar.High > r.high {
			r.high = bar.High
		}
		if bar.Low < r.low {
			r.low = bar.Low
		}
	}

	maxRange := 0.0
	for _, r := range ranges {
		if r.low <= 0 {
			continue
		}
		rel := (r.high - r.low) / r.low
		if rel > maxRange {
			maxRange = rel
		}
	}
	return maxRange, nil
}

// Snapshot computes the volatility regime from the trailing 24 hours of
// bars. The result is immutable for the lifetime of one engine run.
func Snapshot(bars []types.OHLCV) (VolatilitySnapshot, error) {
	if len(bars) > TrailingWindowBars {
		bars = bars[len(bars)-TrailingWindowBars:]
	}

	x, err := ResampleRange(bars, 4*time.Hour)
	if err != nil {
		return VolatilitySnapshot{}, err
	}
	y, err := ResampleRange(bars, time.Hour)
	if err != nil {
		return VolatilitySnapshot{}, err
	}
	return VolatilitySnapshot{X: x, Y: y}, nil
}
