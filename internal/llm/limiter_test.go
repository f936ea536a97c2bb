package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_New(t *testing.T) {
	assert.Equal(t, 5, NewLimiter(10, 5).defaultBurst)
	assert.Equal(t, 4, NewLimiter(10, -1).defaultBurst, "negative burst falls back to 4")
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	assert.NoError(t, limiter.Wait(ctx, "openai"))

	// Different provider has its own bucket
	assert.NoError(t, limiter.Wait(ctx, "google"))
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)

	assert.NoError(t, limiter.Wait(context.Background(), "openai"))

	// Burst 1 is spent
	assert.False(t, limiter.Allow("openai"), "tokens should be exhausted")
	assert.True(t, limiter.Allow("anthropic"), "other provider has its own bucket")
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !assert.True(t, limiter.Allow("openai"), "call %d", i) {
			return
		}
	}
}

func TestLimiter_NilNeverBlocks(t *testing.T) {
	var limiter *Limiter
	assert.NoError(t, limiter.Wait(context.Background(), "openai"))
	assert.True(t, limiter.Allow("openai"))
}

func TestLimiter_WaitRespectsDeadline(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	_ = limiter.Wait(context.Background(), "openai")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Error(t, limiter.Wait(ctx, "openai"), "wait should fail before the next token")
}

func TestLimiter_SetProviderRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	limiter.SetProviderRate("ollama", 0.1, 1)

	assert.True(t, limiter.Allow("ollama"), "first request should pass")
	assert.False(t, limiter.Allow("ollama"), "second request should fail")
	assert.True(t, limiter.Allow("openai"), "other provider should pass")
}
