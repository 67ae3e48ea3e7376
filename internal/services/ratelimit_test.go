package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protegi/taxid-api/internal/config"
	"github.com/protegi/taxid-api/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMemoryLimiter(maxAttempts int, window time.Duration) RateLimiterInterface {
	return NewRateLimiter(nil, config.ValidationConfig{
		MaxAttempts: maxAttempts,
		Window:      window,
	}, testLogger())
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := newMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	// The (N+1)th attempt in the window is rejected
	allowed, err := limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimiterKeysByIdentityAndKind(t *testing.T) {
	limiter := newMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Same identity, same kind: over the limit
	allowed, err = limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Different user behind the same IP is tracked independently
	allowed, err = limiter.CheckLimit(ctx, "10.0.0.1", "user-2", models.KindCPF)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Same user on a different IP is tracked independently
	allowed, err = limiter.CheckLimit(ctx, "10.0.0.2", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Different kind has its own window
	allowed, err = limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCNPJ)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := newMemoryLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	allowed, err := limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)

	allowed, err = limiter.CheckLimit(ctx, "10.0.0.1", "user-1", models.KindCPF)
	require.NoError(t, err)
	assert.True(t, allowed, "a fresh window should allow attempts again")
}

func TestRateLimiterMemoryHealth(t *testing.T) {
	limiter := newMemoryLimiter(1, time.Minute)

	health := limiter.Health()
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "memory", health["backend"])
}
