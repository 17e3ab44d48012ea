package ratelimit

import (
	"context"
	"fmt"
	"time"

	"anoa.com/kudoswall/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window, one-action-per-window lock backed by redis SetNX.
// A nil redis client allows everything.
type Limiter struct {
	rdb *redis.Client
}

// Error is returned when an action is still locked. It matches
// apperror.ErrRateLimitExceeded.
type Error struct {
	Message    string
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow reports whether userID may perform action now and, if so, locks it for window.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

// TTL is how long action stays locked for userID. Zero when unlocked.
func (l *Limiter) TTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}
	// redis reports -1/-2 for keys without expiry or missing keys.
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

// Clear releases the lock, used when the locked action did not happen.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
