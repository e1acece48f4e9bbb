// Package ratelimit throttles review submissions per client. The window
// is a single Redis key per client IP whose TTL is the remaining wait;
// checks fail open when Redis is unreachable, so throttling is advisory
// and never blocks a legitimate submission on infrastructure trouble.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/barsamweb/reviews/internal/cache"
	"github.com/barsamweb/reviews/internal/monitoring"
	"github.com/rs/zerolog/log"
)

// Result contains the outcome of a rate limit check
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// SubmissionLimiter enforces a minimum interval between submissions from
// one client. The window opens on Mark, not on Check, so a failed write
// does not burn the client's slot.
type SubmissionLimiter struct {
	redis  *cache.Redis
	window time.Duration
}

// NewSubmissionLimiter creates a limiter with the given window
func NewSubmissionLimiter(redis *cache.Redis, window time.Duration) *SubmissionLimiter {
	return &SubmissionLimiter{
		redis:  redis,
		window: window,
	}
}

// Check reports whether clientKey may submit. Redis errors allow the
// request (fail open).
func (l *SubmissionLimiter) Check(ctx context.Context, clientKey string) (*Result, error) {
	ttl, err := l.redis.Client.TTL(ctx, key(clientKey)).Result()
	if err != nil {
		log.Error().Err(err).Str("client", clientKey).Msg("Failed to check submission rate limit")
		return &Result{Allowed: true}, nil
	}
	if ttl > 0 {
		monitoring.RecordRateLimitHit()
		return &Result{Allowed: false, RetryAfter: ttl}, nil
	}
	return &Result{Allowed: true}, nil
}

// Mark opens the throttling window for clientKey after a successful
// submission
func (l *SubmissionLimiter) Mark(ctx context.Context, clientKey string) error {
	err := l.redis.Client.Set(ctx, key(clientKey), time.Now().Unix(), l.window).Err()
	if err != nil {
		log.Warn().Err(err).Str("client", clientKey).Msg("Failed to record submission timestamp")
	}
	return err
}

func key(clientKey string) string {
	return fmt.Sprintf("ratelimit:submission:%s", clientKey)
}
