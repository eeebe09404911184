package data

import (
	"sync"

	"github.com/khanhng/martingale-bot/pkg/types"
)

// MemoryCache implements Cache with in-memory storage. Both Get and Set
// copy, so cached sequences can never be mutated through aliases.
type MemoryCache struct {
	cache map[string][]types.OHLCV
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{cache: make(map[string][]types.OHLCV)}
}

// Get retrieves data from the cache if present.
func (c *MemoryCache) Get(key string) ([]types.OHLCV, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	data, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	result := make([]types.OHLCV, len(data))
	copy(result, data)
	return result, true
}

// Set stores data in the cache.
func (c *MemoryCache) Set(key string, data []types.OHLCV) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := make([]types.OHLCV, len(data))
	copy(cached, data)
	c.cache[key] = cached
}

// Clear removes all cached data.
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache = make(map[string][]types.OHLCV)
}

// Size returns the number of cached entries.
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

// CachedProvider wraps another Provider with a cache keyed by source.
type CachedProvider struct {
	provider Provider
	cache    Cache
}

// NewCachedProvider wraps provider with an in-memory cache.
func NewCachedProvider(provider Provider) *CachedProvider {
	return &CachedProvider{provider: provider, cache: NewMemoryCache()}
}

// GetName returns the underlying provider name with a cache marker.
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads from cache when possible, falling through to the
// wrapped provider.
func (p *CachedProvider) LoadData(source string) ([]types.OHLCV, error) {
	if cached, ok := p.cache.Get(source); ok {
		return cached, nil
	}

	data, err := p.provider.LoadData(source)
	if err != nil {
		return nil, err
	}
	p.cache.Set(source, data)
	return data, nil
}

// ValidateData delegates to the wrapped provider.
func (p *CachedProvider) ValidateData(data []types.OHLCV) error {
	return p.provider.ValidateData(data)
}
