package signal

import (
	"math"

	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// WaveSignal is the per-bar output of the wave-divergence policy.
type WaveSignal struct {
	Signal           int     // 1 = hold long, 0 = flat
	Diff             float64 // fast MA - mid MA
	WaveID           int     // contiguous run of one diff sign
	WaveStrength     float64 // mean diff over the bar's wave
	PrevWaveStrength float64 // strength of the previous same-signed wave
}

// WaveDivergence combines a fast/slow MA cross with a divergence exit:
// a contiguous run of bars with one sign of (fastMA - midMA) forms a
// wave, its strength is the mean diff over the run, and a positive wave
// weaker than the one before it flattens an active long signal even
// without a cross.
type WaveDivergence struct {
	shortWindow  int
	mediumWindow int
	longWindow   int
}

// NewWaveDivergence creates the policy with the given MA windows
// (defaults in the base setup: 5/10/20).
func NewWaveDivergence(shortWindow, mediumWindow, longWindow int) *WaveDivergence {
	return &WaveDivergence{
		shortWindow:  shortWindow,
		mediumWindow: mediumWindow,
		longWindow:   longWindow,
	}
}

// Generate produces the per-bar signal sequence. It is a pure function
// of the bar sequence; the input is not modified.
func (w *WaveDivergence) Generate(bars []types.OHLCV) ([]WaveSignal, error) {
	closes := features.Closes(bars)

	shortMA, err := features.RollingMean(closes, w.shortWindow)
	if err != nil {
		return nil, err
	}
	mediumMA, err := features.RollingMean(closes, w.mediumWindow)
	if err != nil {
		return nil, err
	}
	longMA, err := features.RollingMean(closes, w.longWindow)
	if err != nil {
		return nil, err
	}

	out := make([]WaveSignal, len(bars))
	signs := make([]int, len(bars))
	waveIDs := make([]int, len(bars))

	waveID := 0
	for i := range bars {
		diff := shortMA[i] - mediumMA[i]
		sign := -1
		if diff > 0 {
			sign = 1
		}
		if i > 0 && sign*signs[i-1] < 0 {
			waveID++
		}
		signs[i] = sign
		waveIDs[i] = waveID

		out[i].Diff = diff
		out[i].WaveID = waveID
		if !math.IsNaN(shortMA[i]) && !math.IsNaN(longMA[i]) && shortMA[i] > longMA[i] {
			out[i].Signal = 1
		}
	}

	strengths := waveStrengths(out, waveIDs, waveID+1)

	for i := range out {
		w := waveIDs[i]
		out[i].WaveStrength = strengths[w]

		// Waves alternate sign, so the previous wave in the same
		// direction is two ids back.
		if w >= 2 {
			out[i].PrevWaveStrength = strengths[w-2]
		} else {
			out[i].PrevWaveStrength = math.NaN()
		}

		// Divergence exit: still in a positive wave, still long by the
		// cross, but this wave carries less strength than the previous
		// wave in the same direction.
		if out[i].Signal == 1 && signs[i] == 1 && out[i].WaveStrength < out[i].PrevWaveStrength {
			out[i].Signal = 0
		}
	}
	return out, nil
}

// waveStrengths computes the mean diff per wave. NaN diffs (MA warm-up
// bars) are skipped in the sum but still count toward the wave length.
func waveStrengths(signals []WaveSignal, waveIDs []int, waves int) []float64 {
	sums := make([]float64, waves)
	counts := make([]int, waves)
	for i, s := range signals {
		counts[waveIDs[i]]++
		if !math.IsNaN(s.Diff) {
			sums[waveIDs[i]] += s.Diff
		}
	}

	strengths := make([]float64, waves)
	for w := 0; w < waves; w++ {
		if counts[w] == 0 {
			strengths[w] = math.NaN()
			continue
		}
		strengths[w] = sums[w] / float64(counts[w])
	}
	return strengths
}
