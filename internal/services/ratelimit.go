package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/protegi/taxid-api/internal/config"
	"github.com/protegi/taxid-api/internal/models"
)

// RateLimiter counts validation attempts per (IP, user, kind) inside a fixed
// window backed by Redis. When no Redis client is configured the counters
// live in process memory; when Redis errors mid-flight the caller receives
// the error and must fail closed.
type RateLimiter struct {
	client *redis.Client
	cfg    config.ValidationConfig
	logger *logrus.Logger

	memCounters map[string]*windowCounter
	memMutex    sync.Mutex
}

type windowCounter struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a new validation rate limiter
func NewRateLimiter(client *redis.Client, cfg config.ValidationConfig, logger *logrus.Logger) RateLimiterInterface {
	return &RateLimiter{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		memCounters: make(map[string]*windowCounter),
	}
}

// CheckLimit counts this attempt and reports whether it is within the limit
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip, userID string, kind models.IdentifierKind) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s:%s", kind, ip, userID)

	if rl.client == nil {
		return rl.checkMemory(key), nil
	}

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		rl.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Error("Rate limit counter unavailable")
		return false, fmt.Errorf("rate limit counter: %w", err)
	}

	// First hit in the window owns the expiry
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.cfg.Window).Err(); err != nil {
			rl.logger.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Failed to set rate limit window expiry")
		}
	}

	allowed := count <= int64(rl.cfg.MaxAttempts)
	if !allowed {
		rl.logger.WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": rl.cfg.MaxAttempts,
		}).Warn("Validation rate limit exceeded")
	}

	return allowed, nil
}

// checkMemory is the in-process fixed window used when Redis is not configured
func (rl *RateLimiter) checkMemory(key string) bool {
	rl.memMutex.Lock()
	defer rl.memMutex.Unlock()

	now := time.Now()

	counter, exists := rl.memCounters[key]
	if !exists || now.After(counter.resetAt) {
		rl.memCounters[key] = &windowCounter{count: 1, resetAt: now.Add(rl.cfg.Window)}
		rl.pruneLocked(now)
		return rl.cfg.MaxAttempts >= 1
	}

	counter.count++
	return counter.count <= rl.cfg.MaxAttempts
}

// pruneLocked drops expired windows; called with memMutex held
func (rl *RateLimiter) pruneLocked(now time.Time) {
	for key, counter := range rl.memCounters {
		if now.After(counter.resetAt) {
			delete(rl.memCounters, key)
		}
	}
}

// Health returns rate limiter health status
func (rl *RateLimiter) Health() map[string]interface{} {
	if rl.client == nil {
		rl.memMutex.Lock()
		size := len(rl.memCounters)
		rl.memMutex.Unlock()

		return map[string]interface{}{
			"status":  "degraded",
			"backend": "memory",
			"windows": size,
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rl.client.Ping(ctx).Err(); err != nil {
		return map[string]interface{}{
			"status":  "unhealthy",
			"backend": "redis",
			"error":   err.Error(),
		}
	}

	return map[string]interface{}{
		"status":  "healthy",
		"backend": "redis",
	}
}
