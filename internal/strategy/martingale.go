package strategy

import (
	"math"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/internal/features"
	"github.com/khanhng/martingale-bot/internal/signal"
	"github.com/khanhng/martingale-bot/pkg/types"
)

// openPosition exists only while a position is open. Direction lives in
// its payload, so a flat engine structurally cannot carry a stale one.
type openPosition struct {
	direction  signal.Direction
	size       float64
	entryPrice float64
	layer      int
}

// MartingaleEngine walks an ordered bar sequence once, bar by bar, and
// manages a layered position against it: entry on a volatility-gated MA
// cross, martingale adds on confirmed adverse moves, take-profit and
// forced liquidation.
//
// The engine itself is immutable after construction; all run state is
// local to Run, so one engine value can serve repeated runs as long as
// they are not concurrent.
type MartingaleEngine struct {
	cfg Config
	vol features.VolatilitySnapshot
}

// NewMartingaleEngine validates the layer schedule and binds the
// volatility snapshot for the run. The snapshot is an explicit input,
// computed once by the caller from the trailing window (features.Snapshot).
func NewMartingaleEngine(cfg Config, vol features.VolatilitySnapshot) (*MartingaleEngine, error) {
	cfg.applyDefaults()
	if err := cfg.Layers.Validate(); err != nil {
		return nil, err
	}
	if vol.X < 0 || vol.Y < 0 {
		return nil, boterrors.New(boterrors.ErrorCategoryConfiguration, "strategy", "new_engine", "volatility snapshot must be non-negative")
	}
	return &MartingaleEngine{cfg: cfg, vol: vol}, nil
}

// Run evaluates the full sequence with the default MA-cross trend policy.
func (e *MartingaleEngine) Run(bars []types.OHLCV) (*Result, error) {
	if len(bars) < e.cfg.SlowWindow {
		return nil, boterrors.ErrInsufficientData
	}
	trend, err := signal.NewTrendCross(features.Closes(bars), e.cfg.FastWindow, e.cfg.SlowWindow)
	if err != nil {
		return nil, err
	}
	return e.RunWithPolicy(bars, trend, trend.FastMA())
}

// RunWithPolicy evaluates the sequence against an explicit trend policy
// and fast-MA series (used for slope-reversal confirmation). Decisions
// are path dependent: each bar sees the position state left by all bars
// before it, so evaluation is strictly sequential.
func (e *MartingaleEngine) RunWithPolicy(bars []types.OHLCV, trend signal.TrendPolicy, fastMA []float64) (*Result, error) {
	result := &Result{
		Annotations: make([]Annotation, len(bars)),
		Summary:     Summary{LiquidatedAt: -1},
	}

	var pos *openPosition
	for i, bar := range bars {
		price := bar.Close

		if pos == nil {
			dir := e.entryDirection(trend, i)
			if dir == signal.DirectionNone {
				continue
			}
			pos = &openPosition{direction: dir}
			e.addLayer(pos, bar, 0, i, result)
			continue
		}

		reversal := features.SlopeReversal(fastMA, i)

		if reversal && e.takeProfitHit(pos, price) {
			profit := signedMove(pos, price)
			result.Summary.TotalProfit += profit
			result.Annotations[i].CloseSignal = 1
			result.Events = append(result.Events, Event{
				Kind:      EventTakeProfit,
				Index:     i,
				Time:      bar.Timestamp,
				Direction: pos.direction,
				Layer:     pos.layer,
				Price:     price,
				AvgEntry:  pos.entryPrice,
				Position:  pos.size,
				PnL:       profit,
			})
			pos = nil
			continue
		}

		if reversal && e.stopLossHit(pos, price, result.Summary.TotalLoss) {
			if pos.layer < e.cfg.Layers.MaxLayer() {
				e.addLayer(pos, bar, pos.layer+1, i, result)
				continue
			}

			// Last layer and still under water: forced liquidation. This
			// terminates the whole run, not just the position.
			loss := relativeLoss(pos, price)
			if loss > 0 {
				result.Summary.TotalLoss += loss
			}
			result.Annotations[i].CloseSignal = 1
			result.Events = append(result.Events, Event{
				Kind:      EventLiquidation,
				Index:     i,
				Time:      bar.Timestamp,
				Direction: pos.direction,
				Layer:     pos.layer,
				Price:     price,
				AvgEntry:  pos.entryPrice,
				Position:  pos.size,
				PnL:       signedMove(pos, price),
			})
			result.Summary.Liquidated = true
			result.Summary.LiquidatedAt = i
			pos = nil
			break
		}
	}

	return result, nil
}

// entryDirection resolves a fresh-entry direction for bar i. The
// reference implementation short-circuited before its trend check, which
// would have made the volatility gate veto every entry; here the gate
// and the trend check are two AND'd conditions.
func (e *MartingaleEngine) entryDirection(trend signal.TrendPolicy, i int) signal.Direction {
	if e.vol.X <= e.cfg.EntryVolatility {
		return signal.DirectionNone
	}
	return trend.Direction(i)
}

// addLayer opens layer `layer` at the bar close and folds it into the
// volume-weighted average entry price. Sizes are validated positive at
// construction, so the denominator is never zero.
func (e *MartingaleEngine) addLayer(pos *openPosition, bar types.OHLCV, layer, index int, result *Result) {
	price := bar.Close
	added := e.cfg.Layers.Size[layer]
	pos.entryPrice = (pos.entryPrice*pos.size + price*added) / (pos.size + added)
	pos.size += added
	pos.layer = layer

	openSignal := 1
	if pos.direction == signal.DirectionShort {
		openSignal = -1
	}
	result.Annotations[index].OpenSignal = openSignal

	kind := EventAdd
	if layer == 0 {
		kind = EventEntry
	}
	result.Events = append(result.Events, Event{
		Kind:      kind,
		Index:     index,
		Time:      bar.Timestamp,
		Direction: pos.direction,
		Layer:     layer,
		Price:     price,
		AvgEntry:  pos.entryPrice,
		Position:  pos.size,
	})
}

// volatilityFactor is the shared stop/take scale: min(x/2, y).
func (e *MartingaleEngine) volatilityFactor() float64 {
	return math.Min(e.vol.X/2, e.vol.Y)
}

func (e *MartingaleEngine) stopLossTarget(layer int) float64 {
	return e.volatilityFactor() * e.cfg.Layers.Leverage[layer]
}

func (e *MartingaleEngine) takeProfitTarget(layer int) float64 {
	if layer == 0 {
		return e.cfg.Layers.Leverage[0] * firstLayerTakeProfit
	}
	return e.volatilityFactor() * e.cfg.Layers.Leverage[layer]
}

func (e *MartingaleEngine) takeProfitHit(pos *openPosition, price float64) bool {
	return relativeProfit(pos, price) >= e.takeProfitTarget(pos.layer)
}

func (e *MartingaleEngine) stopLossHit(pos *openPosition, price, totalLoss float64) bool {
	return relativeLoss(pos, price) >= e.stopLossTarget(pos.layer) || totalLoss >= e.cfg.MaxTotalLoss
}

// relativeProfit is the favorable move from the average entry, signed by
// direction, as a fraction of the entry price.
func relativeProfit(pos *openPosition, price float64) float64 {
	if pos.direction == signal.DirectionShort {
		return (pos.entryPrice - price) / pos.entryPrice
	}
	return (price - pos.entryPrice) / pos.entryPrice
}

func relativeLoss(pos *openPosition, price float64) float64 {
	return -relativeProfit(pos, price)
}

// signedMove is the absolute price move from the average entry, signed
// by direction; this is the realized profit on a take-profit close.
func signedMove(pos *openPosition, price float64) float64 {
	if pos.direction == signal.DirectionShort {
		return pos.entryPrice - price
	}
	return price - pos.entryPrice
}

