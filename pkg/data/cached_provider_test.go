package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// countingProvider records how many times LoadData runs.
type countingProvider struct {
	loads int
	bars  []types.OHLCV
}

func (p *countingProvider) LoadData(source string) ([]types.OHLCV, error) {
	p.loads++
	return p.bars, nil
}

func (p *countingProvider) ValidateData(data []types.OHLCV) error { return nil }
func (p *countingProvider) GetName() string                       { return "Counting" }

func TestMemoryCache_CopiesOnGetAndSet(t *testing.T) {
	cache := NewMemoryCache()
	bars := sequentialBars(2, time.Minute)

	cache.Set("k", bars)
	bars[0].Close = 0

	got, ok := cache.Get("k")
	require.True(t, ok)
	assert.Equal(t, 100.0, got[0].Close)

	got[1].Close = 0
	again, _ := cache.Get("k")
	assert.Equal(t, 100.0, again[1].Close)
}

func TestMemoryCache_ClearAndSize(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set("a", nil)
	cache.Set("b", nil)
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestCachedProvider_LoadsOnce(t *testing.T) {
	inner := &countingProvider{bars: sequentialBars(3, time.Minute)}
	provider := NewCachedProvider(inner)

	first, err := provider.LoadData("file.csv")
	require.NoError(t, err)
	second, err := provider.LoadData("file.csv")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.loads)
	assert.Equal(t, first, second)
	assert.Equal(t, "Cached Counting", provider.GetName())
}
