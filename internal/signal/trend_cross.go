package signal

import (
	"math"

	"github.com/khanhng/martingale-bot/internal/features"
)

// Direction is the per-bar directional signal.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionLong
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "long"
	case DirectionShort:
		return "short"
	default:
		return "none"
	}
}

// TrendPolicy resolves a direction for a bar index. Implementations are
// pure functions of the precomputed feature series.
type TrendPolicy interface {
	Direction(i int) Direction
}

// TrendCross signals long while the fast MA is above the slow MA and
// short while it is below. Exact equality, or an undefined MA, resolves
// to none: a tie never opens a new position, and it never force-closes
// an existing one.
type TrendCross struct {
	fast []float64
	slow []float64
}

// NewTrendCross computes fast/slow moving averages over the close series.
func NewTrendCross(closes []float64, fastWindow, slowWindow int) (*TrendCross, error) {
	fast, err := features.RollingMean(closes, fastWindow)
	if err != nil {
		return nil, err
	}
	slow, err := features.RollingMean(closes, slowWindow)
	if err != nil {
		return nil, err
	}
	return &TrendCross{fast: fast, slow: slow}, nil
}

// Direction implements TrendPolicy.
func (t *TrendCross) Direction(i int) Direction {
	if i < 0 || i >= len(t.fast) {
		return DirectionNone
	}
	fast, slow := t.fast[i], t.slow[i]
	if math.IsNaN(fast) || math.IsNaN(slow) {
		return DirectionNone
	}
	switch {
	case fast > slow:
		return DirectionLong
	case fast < slow:
		return DirectionShort
	default:
		return DirectionNone
	}
}

// FastMA exposes the fast moving-average series for slope checks.
func (t *TrendCross) FastMA() []float64 {
	return t.fast
}
