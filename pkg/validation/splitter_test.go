package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

func makeBars(n int) []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, n)
	for i := range bars {
		bars[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * time.Minute), Close: 100}
	}
	return bars
}

func TestSplitByRatio(t *testing.T) {
	bars := makeBars(10)

	train, holdout := SplitByRatio(bars, 0.7)
	require.Len(t, train, 7)
	require.Len(t, holdout, 3)
	assert.Equal(t, bars[7].Timestamp, holdout[0].Timestamp)
}

func TestSplitByRatio_DegenerateRatios(t *testing.T) {
	bars := makeBars(10)

	for _, ratio := range []float64{0, 1, -0.5, 1.5} {
		train, holdout := SplitByRatio(bars, ratio)
		assert.Len(t, train, 10, "ratio %v", ratio)
		assert.Nil(t, holdout, "ratio %v", ratio)
	}

	train, holdout := SplitByRatio(makeBars(1), 0.5)
	assert.Len(t, train, 1)
	assert.Nil(t, holdout)
}
