package safety

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_StartsFull(t *testing.T) {
	rl := NewRateLimiter(3, 1)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	require.True(t, rl.Allow()) // drain

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitSucceedsWithTokens(t *testing.T) {
	rl := NewRateLimiter(2, 1)
	assert.NoError(t, rl.Wait(context.Background()))
	assert.Equal(t, 1, rl.Tokens())
}
