package feed

import (
	"sync"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// RollingBuffer keeps the trailing N bars of an instrument. A refresh
// with the same timestamp as the tail replaces the tail (the venue
// re-reports the forming minute); a newer bar is appended and the head
// trimmed. Older or duplicate bars are dropped.
//
// The strategy engine never reads the buffer directly: Snapshot hands it
// an independent copy, so a run can never observe concurrent mutation.
type RollingBuffer struct {
	mu       sync.Mutex
	capacity int
	bars     []types.OHLCV
}

// NewRollingBuffer creates a buffer holding at most capacity bars.
func NewRollingBuffer(capacity int) *RollingBuffer {
	return &RollingBuffer{capacity: capacity}
}

// Seed replaces the buffer contents with a historical window, keeping at
// most the trailing capacity bars.
func (b *RollingBuffer) Seed(bars []types.OHLCV) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(bars) > b.capacity {
		bars = bars[len(bars)-b.capacity:]
	}
	b.bars = make([]types.OHLCV, len(bars))
	copy(b.bars, bars)
}

// Push merges one bar into the buffer. Returns true if the buffer
// changed.
func (b *RollingBuffer) Push(bar types.OHLCV) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.bars)
	if n > 0 {
		last := b.bars[n-1].Timestamp
		if bar.Timestamp.Equal(last) {
			b.bars[n-1] = bar
			return true
		}
		if bar.Timestamp.Before(last) {
			return false
		}
	}

	b.bars = append(b.bars, bar)
	if len(b.bars) > b.capacity {
		b.bars = b.bars[len(b.bars)-b.capacity:]
	}
	return true
}

// Snapshot returns an immutable copy of the current window for one
// engine run.
func (b *RollingBuffer) Snapshot() []types.OHLCV {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]types.OHLCV, len(b.bars))
	copy(out, b.bars)
	return out
}

// Len returns the number of buffered bars.
func (b *RollingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bars)
}
