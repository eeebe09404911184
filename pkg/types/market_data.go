package types

import "time"

// OHLCV is a single candlestick. Sequences handed to the engine are
// ordered by Timestamp, strictly increasing.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Tick is a single trade print, used by the minute aggregator.
type Tick struct {
	Price     float64
	Size      float64
	Timestamp time.Time
}
