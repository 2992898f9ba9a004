package ports

import "context"

// LoginThrottle rate-limits login attempts per identifier. Allow returns
// false once the attempt budget for the current window is exhausted.
// Implementations should fail open on infrastructure errors so that a cache
// outage does not lock everyone out.
type LoginThrottle interface {
	Allow(ctx context.Context, identifier string) (bool, error)
	Reset(ctx context.Context, identifier string) error
}
