package data

import (
	"time"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// Provider loads historical bars from some source (CSV file, venue dump).
type Provider interface {
	// LoadData loads bars from the specified source, oldest first.
	LoadData(source string) ([]types.OHLCV, error)

	// ValidateData verifies the integrity of loaded bars.
	ValidateData(data []types.OHLCV) error

	// GetName returns the provider name.
	GetName() string
}

// Cache stores loaded bar sequences keyed by source.
type Cache interface {
	Get(key string) ([]types.OHLCV, bool)
	Set(key string, data []types.OHLCV)
	Clear()
	Size() int
}

// ColumnMapping defines the column positions and date format of an OHLCV
// CSV file.
type ColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
	UnixMillis   bool // timestamps are unix milliseconds instead of DateFormat
}

// DefaultCSVFormat matches the downloader's output:
// timestamp,open,high,low,close,volume with RFC-like datetimes.
var DefaultCSVFormat = ColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}

// TickColumnMapping defines the column positions of a raw trade-tick CSV.
type TickColumnMapping struct {
	TimestampCol int
	PriceCol     int
	SizeCol      int
	MinColumns   int
}

// DefaultTickFormat matches venue trade exports:
// created_time(ms),price,size.
var DefaultTickFormat = TickColumnMapping{
	TimestampCol: 0,
	PriceCol:     1,
	SizeCol:      2,
	MinColumns:   3,
}

// Filter narrows or validates a bar sequence before a run.
type Filter interface {
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV
	ValidateTimeSequence(data []types.OHLCV) error
}
