package optimization

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/internal/strategy"
	"github.com/khanhng/martingale-bot/pkg/types"
)

func risingBars(n int) []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, n)
	for i := range bars {
		c := 100 + float64(i)*0.1
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      c, High: c, Low: c, Close: c, Volume: 1,
		}
	}
	return bars
}

func sweepConfig() strategy.Config {
	return strategy.Config{FastWindow: 2, SlowWindow: 3}
}

func TestGenerateSchedules(t *testing.T) {
	candidates := GenerateSchedules([]int{2, 3}, []float64{2.0})
	require.Len(t, candidates, 2)

	assert.Equal(t, "d2_x2.0", candidates[0].Name)
	assert.Equal(t, []float64{1, 2}, candidates[0].Layers.Leverage)
	assert.Equal(t, []float64{0.5, 0.5}, candidates[0].Layers.Size)

	assert.Equal(t, []float64{1, 2, 4}, candidates[1].Layers.Leverage)
	for _, c := range candidates {
		assert.NoError(t, c.Layers.Validate())
	}

	// Degenerate inputs are skipped, not emitted.
	assert.Empty(t, GenerateSchedules([]int{0}, []float64{2.0}))
	assert.Empty(t, GenerateSchedules([]int{2}, []float64{-1}))
}

func TestSweep_ResultsInCandidateOrder(t *testing.T) {
	sweep := NewSweep(sweepConfig(), features.VolatilitySnapshot{X: 0.02, Y: 0.01}, 4)
	candidates := DefaultGrid()

	results := sweep.Run(context.Background(), risingBars(30), candidates)
	require.Len(t, results, len(candidates))

	for i, r := range results {
		assert.Equal(t, candidates[i].Name, r.Candidate.Name)
		assert.NoError(t, r.Err)
	}
}

func TestSweep_InvalidCandidateCarriesError(t *testing.T) {
	sweep := NewSweep(sweepConfig(), features.VolatilitySnapshot{X: 0.02, Y: 0.01}, 1)
	candidates := []Candidate{{
		Name:   "broken",
		Layers: strategy.LayerSchedule{Leverage: []float64{1}, Size: []float64{0}},
	}}

	results := sweep.Run(context.Background(), risingBars(30), candidates)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)

	_, ok := Best(results)
	assert.False(t, ok)
}

func TestSweep_Deterministic(t *testing.T) {
	sweep := NewSweep(sweepConfig(), features.VolatilitySnapshot{X: 0.02, Y: 0.01}, 3)
	bars := risingBars(30)
	candidates := DefaultGrid()

	first := sweep.Run(context.Background(), bars, candidates)
	second := sweep.Run(context.Background(), bars, candidates)
	assert.Equal(t, first, second)
}

func TestBest_PrefersSurvivors(t *testing.T) {
	results := []Result{
		{Candidate: Candidate{Name: "liquidated"}, Summary: strategy.Summary{Liquidated: true, TotalLoss: 0.1, TotalProfit: 50}},
		{Candidate: Candidate{Name: "small-profit"}, Summary: strategy.Summary{TotalProfit: 1}},
		{Candidate: Candidate{Name: "big-profit"}, Summary: strategy.Summary{TotalProfit: 4}},
		{Candidate: Candidate{Name: "errored"}, Err: context.Canceled},
	}

	best, ok := Best(results)
	require.True(t, ok)
	assert.Equal(t, "big-profit", best.Candidate.Name)

	onlyLiquidated := []Result{
		{Candidate: Candidate{Name: "worse"}, Summary: strategy.Summary{Liquidated: true, TotalLoss: 0.4}},
		{Candidate: Candidate{Name: "better"}, Summary: strategy.Summary{Liquidated: true, TotalLoss: 0.2}},
	}
	best, ok = Best(onlyLiquidated)
	require.True(t, ok)
	assert.Equal(t, "better", best.Candidate.Name)
}
