package domain

import "time"

// AccessCode is a single-use registration credential provisioned out-of-band.
// A code with Used=true or a past expiry must never permit registration; the
// used flag is flipped exactly once, in the same unit of work that creates
// the user.
type AccessCode struct {
	ID        string     `json:"id,omitempty"`
	Code      string     `json:"code"`
	Used      bool       `json:"used"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the code's expiry, if any, has passed at now.
func (c *AccessCode) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
