package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// DefaultFilter implements Filter for common narrowing operations.
type DefaultFilter struct{}

// NewDefaultFilter creates a new default filter.
func NewDefaultFilter() *DefaultFilter {
	return &DefaultFilter{}
}

// FilterByPeriod keeps the bars within the trailing period, measured
// from the latest bar.
func (f *DefaultFilter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Timestamp.Add(-period)
	startIdx := 0
	for i, candle := range data {
		if !candle.Timestamp.Before(cutoff) {
			startIdx = i
			break
		}
	}
	return data[startIdx:]
}

// FilterByDateRange keeps bars with start <= timestamp <= end.
func (f *DefaultFilter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	var filtered []types.OHLCV
	for _, candle := range data {
		if !candle.Timestamp.Before(start) && !candle.Timestamp.After(end) {
			filtered = append(filtered, candle)
		}
	}
	return filtered
}

// ValidateTimeSequence ensures bars are strictly chronological with no
// duplicate timestamps.
func (f *DefaultFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, data[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// RemoveDuplicates drops bars with repeated timestamps, keeping the
// first occurrence.
func (f *DefaultFilter) RemoveDuplicates(data []types.OHLCV) []types.OHLCV {
	if len(data) <= 1 {
		return data
	}

	var filtered []types.OHLCV
	seen := make(map[int64]bool)
	for _, candle := range data {
		ts := candle.Timestamp.UnixMilli()
		if !seen[ts] {
			seen[ts] = true
			filtered = append(filtered, candle)
		}
	}
	return filtered
}

// ParseTrailingPeriod parses period strings like "7d", "24h", "90m" into
// a duration.
func ParseTrailingPeriod(s string) (time.Duration, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) < 2 {
		return 0, false
	}

	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value <= 0 {
		return 0, false
	}

	switch s[len(s)-1] {
	case 'd':
		return time.Duration(value) * 24 * time.Hour, true
	case 'h':
		return time.Duration(value) * time.Hour, true
	case 'm':
		return time.Duration(value) * time.Minute, true
	default:
		return 0, false
	}
}
