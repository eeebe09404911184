package strategy

import (
	"time"

	boterrors "github.com/khanhng/martingale-bot/internal/errors"
	"github.com/khanhng/martingale-bot/internal/signal"
)

// Default engine parameters.
const (
	DefaultFastWindow = 13
	DefaultSlowWindow = 120

	// DefaultEntryVolatility is the minimum 4h-range regime (x) required
	// to open a fresh position.
	DefaultEntryVolatility = 0.01

	// DefaultMaxTotalLoss is the cumulative realized-loss cap; reaching it
	// forces liquidation.
	DefaultMaxTotalLoss = 0.5

	// firstLayerTakeProfit is the fixed relative target for layer 0,
	// scaled by that layer's leverage.
	firstLayerTakeProfit = 0.01
)

// LayerSchedule defines the martingale ladder: Leverage[i] is the risk
// multiplier for layer i, Size[i] the position added at layer i. Layer 0
// is the initial entry; layers >= 1 are add-ons on adverse moves.
type LayerSchedule struct {
	Leverage []float64
	Size     []float64
}

// Validate rejects schedules that would poison the weighted-average
// entry price: mismatched lengths, empty lists, or non-positive sizes.
func (s LayerSchedule) Validate() error {
	if len(s.Leverage) == 0 || len(s.Leverage) != len(s.Size) {
		return boterrors.ErrInvalidLayerConfig
	}
	for _, size := range s.Size {
		if size <= 0 {
			return boterrors.ErrInvalidLayerConfig
		}
	}
	return nil
}

// MaxLayer is the last usable layer index.
func (s LayerSchedule) MaxLayer() int {
	return len(s.Leverage) - 1
}

// Config holds the constructor-time engine parameters, immutable for
// the run.
type Config struct {
	Layers          LayerSchedule
	FastWindow      int     // fast MA window (default 13)
	SlowWindow      int     // slow MA window (default 120)
	EntryVolatility float64 // minimum x to open (default 1%)
	MaxTotalLoss    float64 // cumulative loss cap (default 50%)
}

func (c *Config) applyDefaults() {
	if c.FastWindow == 0 {
		c.FastWindow = DefaultFastWindow
	}
	if c.SlowWindow == 0 {
		c.SlowWindow = DefaultSlowWindow
	}
	if c.EntryVolatility == 0 {
		c.EntryVolatility = DefaultEntryVolatility
	}
	if c.MaxTotalLoss == 0 {
		c.MaxTotalLoss = DefaultMaxTotalLoss
	}
}

// Annotation carries the per-bar engine output. The engine produces a
// fresh annotation sequence next to the input bars; it never writes into
// the bar sequence itself.
type Annotation struct {
	OpenSignal  int // +1 long add, -1 short add, 0 none
	CloseSignal int // 1 when the position was closed on this bar
}

// EventKind classifies position lifecycle events.
type EventKind int

const (
	EventEntry EventKind = iota
	EventAdd
	EventTakeProfit
	EventLiquidation
)

func (k EventKind) String() string {
	switch k {
	case EventEntry:
		return "ENTRY"
	case EventAdd:
		return "ADD"
	case EventTakeProfit:
		return "TAKE_PROFIT"
	case EventLiquidation:
		return "LIQUIDATION"
	default:
		return "UNKNOWN"
	}
}

// Event records one position lifecycle transition for reporting.
type Event struct {
	Kind      EventKind
	Index     int
	Time      time.Time
	Direction signal.Direction
	Layer     int
	Price     float64
	AvgEntry  float64
	Position  float64
	PnL       float64 // realized profit on closes, 0 otherwise
}

// Summary is the terminal scalar output of one run.
type Summary struct {
	TotalProfit  float64
	TotalLoss    float64
	Liquidated   bool
	LiquidatedAt int // bar index of the liquidation, -1 if none
}

// Result is the full output of one sequential pass: one annotation per
// input bar, the event log, and the terminal summary.
type Result struct {
	Annotations []Annotation
	Events      []Event
	Summary     Summary
}
