package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

func sequentialBars(n int, step time.Duration) []types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, n)
	for i := range bars {
		bars[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      100, High: 101, Low: 99, Close: 100, Volume: 1,
		}
	}
	return bars
}

func TestFilterByPeriod(t *testing.T) {
	filter := NewDefaultFilter()
	bars := sequentialBars(10, time.Minute)

	got := filter.FilterByPeriod(bars, 3*time.Minute)
	require.Len(t, got, 4) // cutoff is inclusive of the bar on it
	assert.Equal(t, bars[6].Timestamp, got[0].Timestamp)

	// Zero period passes everything through.
	assert.Len(t, filter.FilterByPeriod(bars, 0), 10)
	assert.Empty(t, filter.FilterByPeriod(nil, time.Hour))
}

func TestFilterByDateRange(t *testing.T) {
	filter := NewDefaultFilter()
	bars := sequentialBars(10, time.Minute)

	got := filter.FilterByDateRange(bars, bars[2].Timestamp, bars[5].Timestamp)
	require.Len(t, got, 4)
	assert.Equal(t, bars[2].Timestamp, got[0].Timestamp)
	assert.Equal(t, bars[5].Timestamp, got[3].Timestamp)
}

func TestValidateTimeSequence(t *testing.T) {
	filter := NewDefaultFilter()

	assert.NoError(t, filter.ValidateTimeSequence(sequentialBars(5, time.Minute)))

	bars := sequentialBars(3, time.Minute)
	bars[2].Timestamp = bars[1].Timestamp
	assert.Error(t, filter.ValidateTimeSequence(bars))

	bars = sequentialBars(3, time.Minute)
	bars[0], bars[1] = bars[1], bars[0]
	assert.Error(t, filter.ValidateTimeSequence(bars))
}

func TestRemoveDuplicates(t *testing.T) {
	filter := NewDefaultFilter()
	bars := sequentialBars(3, time.Minute)
	dup := bars[1]
	dup.Close = 999
	withDup := []types.OHLCV{bars[0], bars[1], dup, bars[2]}

	got := filter.RemoveDuplicates(withDup)
	require.Len(t, got, 3)
	assert.Equal(t, 100.0, got[1].Close) // first occurrence wins
}

func TestParseTrailingPeriod(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"24h", 24 * time.Hour, true},
		{"90m", 90 * time.Minute, true},
		{" 2H ", 2 * time.Hour, true},
		{"", 0, false},
		{"d", 0, false},
		{"0h", 0, false},
		{"-3d", 0, false},
		{"5w", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseTrailingPeriod(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}
