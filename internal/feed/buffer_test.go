package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

func minuteBar(minute int, close float64) types.OHLCV {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return types.OHLCV{
		Timestamp: start.Add(time.Duration(minute) * time.Minute),
		Open:      close,
		High:      close,
		Low:       close,
		Close:     close,
		Volume:    1,
	}
}

func TestRollingBuffer_SeedKeepsTrailingWindow(t *testing.T) {
	buf := NewRollingBuffer(3)
	buf.Seed([]types.OHLCV{
		minuteBar(0, 100), minuteBar(1, 101), minuteBar(2, 102),
		minuteBar(3, 103), minuteBar(4, 104),
	})

	snap := buf.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, 102.0, snap[0].Close)
	assert.Equal(t, 104.0, snap[2].Close)
}

func TestRollingBuffer_PushReplacesFormingMinute(t *testing.T) {
	buf := NewRollingBuffer(10)
	buf.Seed([]types.OHLCV{minuteBar(0, 100), minuteBar(1, 101)})

	// Venue re-reports the current minute with an updated close.
	updated := minuteBar(1, 101.5)
	assert.True(t, buf.Push(updated))

	snap := buf.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 101.5, snap[1].Close)
}

func TestRollingBuffer_PushAppendsAndTrims(t *testing.T) {
	buf := NewRollingBuffer(2)
	buf.Seed([]types.OHLCV{minuteBar(0, 100), minuteBar(1, 101)})

	assert.True(t, buf.Push(minuteBar(2, 102)))
	assert.Equal(t, 2, buf.Len())

	snap := buf.Snapshot()
	assert.Equal(t, 101.0, snap[0].Close)
	assert.Equal(t, 102.0, snap[1].Close)
}

func TestRollingBuffer_PushDropsStaleBar(t *testing.T) {
	buf := NewRollingBuffer(10)
	buf.Seed([]types.OHLCV{minuteBar(5, 100)})

	assert.False(t, buf.Push(minuteBar(3, 99)))
	assert.Equal(t, 1, buf.Len())
}

func TestRollingBuffer_SnapshotIsIsolated(t *testing.T) {
	buf := NewRollingBuffer(10)
	buf.Seed([]types.OHLCV{minuteBar(0, 100)})

	snap := buf.Snapshot()
	buf.Push(minuteBar(1, 101))
	snap[0].Close = 0

	require.Len(t, snap, 1)
	fresh := buf.Snapshot()
	require.Len(t, fresh, 2)
	assert.Equal(t, 100.0, fresh[0].Close)
}

func TestRollingBuffer_PushIntoEmpty(t *testing.T) {
	buf := NewRollingBuffer(5)
	assert.True(t, buf.Push(minuteBar(0, 100)))
	assert.Equal(t, 1, buf.Len())
}
