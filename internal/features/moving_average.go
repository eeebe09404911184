package features

import (
	"math"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// Closes extracts the close price series from a bar sequence.
func Closes(bars []types.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}

// RollingMean computes a trailing simple moving average over values.
// The first window-1 entries are NaN; consumers must treat NaN as
// "no signal".
func RollingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, boterrors.New(boterrors.ErrorCategoryConfiguration, "features", "rolling_mean", "window must be positive")
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// SlopeReversal reports whether the short-term slope of the series
// flipped sign at index i: (ma[i]-ma[i-5]) * (ma[i-1]-ma[i-6]) < 0.
// Requires seven defined points (i-6..i); returns false otherwise.
func SlopeReversal(ma []float64, i int) bool {
	if i < 6 || i >= len(ma) {
		return false
	}
	for j := i - 6; j <= i; j++ {
		if math.IsNaN(ma[j]) {
			return false
		}
	}
	return (ma[i]-ma[i-5])*(ma[i-1]-ma[i-6]) < 0
}
