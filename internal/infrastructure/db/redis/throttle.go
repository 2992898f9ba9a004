package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle limits login attempts per identifier using a Redis counter
// with a fixed window. Key format: login_attempts:<identifier>.
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginThrottle{client: client, maxAttempts: maxAttempts, window: window}
}

// Allow counts an attempt and reports whether the identifier is still within
// its budget for the current window.
func (t *LoginThrottle) Allow(ctx context.Context, identifier string) (bool, error) {
	key := t.key(identifier)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return true, fmt.Errorf("throttle incr: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return true, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return n <= int64(t.maxAttempts), nil
}

// Reset clears the attempt counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, identifier string) error {
	return t.client.Del(ctx, t.key(identifier)).Err()
}

func (t *LoginThrottle) key(identifier string) string {
	return "login_attempts:" + strings.ToLower(identifier)
}
