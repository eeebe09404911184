package safety

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket used to pace REST requests against venue
// rate limits. It starts full, refills refillRate tokens per second and
// never holds more than capacity.
type RateLimiter struct {
	capacity   int
	tokens     int
	refillRate int
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewRateLimiter creates a limiter with the given capacity and
// per-second refill rate.
func NewRateLimiter(capacity, refillRate int) *RateLimiter {
	return &RateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (rl *RateLimiter) Allow() bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refillTokens()
	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context ends.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.waitTime()):
		}
	}
}

// Tokens reports the current token count.
func (rl *RateLimiter) Tokens() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refillTokens()
	return rl.tokens
}

func (rl *RateLimiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed < time.Second {
		return
	}

	added := int(elapsed.Seconds()) * rl.refillRate
	if added > 0 {
		rl.tokens += added
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
		rl.lastRefill = now
	}
}

func (rl *RateLimiter) waitTime() time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refillTokens()
	if rl.tokens > 0 {
		return 0
	}
	// One token plus a small buffer for timing precision.
	return time.Second/time.Duration(rl.refillRate) + 100*time.Millisecond
}
