package signal

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// barsFromCloses builds 1-minute bars with the given close prices.
func barsFromCloses(closes []float64) []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}
	return bars
}

// Windows 1/2/2 make the diff a scaled one-bar price change, so the wave
// structure can be dictated directly by the close sequence.
func TestWaveDivergence_WaveIDsAndStrengths(t *testing.T) {
	w := NewWaveDivergence(1, 2, 2)
	// Diff signs: [-1 (NaN warm-up), -1, +1, +1, -1] -> waves [0,0,1,1,2].
	signals, err := w.Generate(barsFromCloses([]float64{100, 99, 100, 101, 100}))
	require.NoError(t, err)
	require.Len(t, signals, 5)

	ids := make([]int, len(signals))
	for i, s := range signals {
		ids[i] = s.WaveID
	}
	assert.Equal(t, []int{0, 0, 1, 1, 2}, ids)

	// Per-wave mean of the diff; the NaN warm-up bar counts toward wave
	// length but not the sum.
	assert.InDelta(t, -0.25, signals[1].WaveStrength, 1e-9)
	assert.InDelta(t, 0.5, signals[2].WaveStrength, 1e-9)
	assert.InDelta(t, 0.5, signals[3].WaveStrength, 1e-9)
	assert.InDelta(t, -0.5, signals[4].WaveStrength, 1e-9)
}

func TestWaveDivergence_DivergenceExit(t *testing.T) {
	w := NewWaveDivergence(1, 2, 2)
	// Strong positive wave (diffs 3, 2), a pullback, then a weak positive
	// wave (diffs 0.5, 0.5): the weak wave is flattened even though the
	// cross still reads long.
	signals, err := w.Generate(barsFromCloses([]float64{100, 106, 110, 108, 109, 110}))
	require.NoError(t, err)

	got := make([]int, len(signals))
	for i, s := range signals {
		got[i] = s.Signal
	}
	assert.Equal(t, []int{0, 1, 1, 0, 0, 0}, got)

	// The weak wave compares against the previous positive wave.
	assert.InDelta(t, 2.5, signals[4].PrevWaveStrength, 1e-9)
	assert.InDelta(t, 0.5, signals[4].WaveStrength, 1e-9)
}

func TestWaveDivergence_NoExitWhenStronger(t *testing.T) {
	w := NewWaveDivergence(1, 2, 2)
	// Second positive wave is stronger than the first: no divergence.
	signals, err := w.Generate(barsFromCloses([]float64{100, 101, 100, 103, 106}))
	require.NoError(t, err)

	assert.Equal(t, 1, signals[3].Signal)
	assert.Equal(t, 1, signals[4].Signal)
}

func TestWaveDivergence_FirstWavesHaveNoPrev(t *testing.T) {
	w := NewWaveDivergence(1, 2, 2)
	signals, err := w.Generate(barsFromCloses([]float64{100, 101, 102}))
	require.NoError(t, err)

	for _, s := range signals[:2] {
		assert.True(t, math.IsNaN(s.PrevWaveStrength))
	}
}

func TestWaveDivergence_PureFunction(t *testing.T) {
	w := NewWaveDivergence(1, 2, 2)
	bars := barsFromCloses([]float64{100, 106, 110, 108, 109, 110})
	before := make([]types.OHLCV, len(bars))
	copy(before, bars)

	first, err := w.Generate(bars)
	require.NoError(t, err)
	second, err := w.Generate(bars)
	require.NoError(t, err)

	assert.Equal(t, before, bars)
	for i := range first {
		assert.Equal(t, first[i].Signal, second[i].Signal)
		assert.Equal(t, first[i].WaveID, second[i].WaveID)
	}
}
