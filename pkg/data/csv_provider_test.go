package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVProvider_LoadData(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
2024-03-01 00:00:00,100,101,99,100.5,12.5
2024-03-01 00:01:00,100.5,102,100,101.5,8.1
`)

	provider := NewCSVProvider()
	bars, err := provider.LoadData(path)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 100.0, bars[0].Open)
	assert.Equal(t, 101.0, bars[0].High)
	assert.Equal(t, 99.0, bars[0].Low)
	assert.Equal(t, 100.5, bars[0].Close)
	assert.Equal(t, 12.5, bars[0].Volume)
	assert.NoError(t, provider.ValidateData(bars))
}

func TestCSVProvider_SkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
2024-03-01 00:00:00,100,101,99,100.5,12.5
not-a-date,100,101,99,100.5,12.5
2024-03-01 00:02:00,abc,101,99,100.5,12.5
2024-03-01 00:03:00,100,101,99
2024-03-01 00:04:00,-5,101,99,100.5,12.5
2024-03-01 00:05:00,100,98,99,100.5,12.5
2024-03-01 00:06:00,100,101,99,100.5,12.5
`)

	provider := NewCSVProvider()
	bars, err := provider.LoadData(path)
	require.NoError(t, err)

	// Only the first and last rows survive; the bad timestamp, bad
	// float, short row, negative price and high-below-close rows are
	// all dropped.
	require.Len(t, bars, 2)
	assert.Equal(t, 0, bars[0].Timestamp.Minute())
	assert.Equal(t, 6, bars[1].Timestamp.Minute())
}

func TestCSVProvider_UnixMillisFormat(t *testing.T) {
	path := writeTempCSV(t, `timestamp,open,high,low,close,volume
1709251200000,100,101,99,100.5,12.5
`)

	format := DefaultCSVFormat
	format.UnixMillis = true
	provider := NewCSVProviderWithFormat(format)

	bars, err := provider.LoadData(path)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.UnixMilli(1709251200000).UTC(), bars[0].Timestamp)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	provider := NewCSVProvider()
	_, err := provider.LoadData(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestCSVProvider_ValidateData(t *testing.T) {
	provider := NewCSVProvider()

	assert.Error(t, provider.ValidateData(nil))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	good := []types.OHLCV{
		{Timestamp: base, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Timestamp: base.Add(time.Minute), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
	}
	assert.NoError(t, provider.ValidateData(good))

	highBelowLow := []types.OHLCV{
		{Timestamp: base, Open: 100, High: 98, Low: 99, Close: 100, Volume: 1},
	}
	assert.Error(t, provider.ValidateData(highBelowLow))

	outOfOrder := []types.OHLCV{
		{Timestamp: base.Add(time.Minute), Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
		{Timestamp: base, Open: 100, High: 101, Low: 99, Close: 100, Volume: 1},
	}
	assert.Error(t, provider.ValidateData(outOfOrder))
}
