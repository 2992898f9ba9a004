package domain

import "time"

// ActivityKind enumerates the audit-trail categories emitted by the auth flows.
type ActivityKind string

const (
	ActivityRegisterSuccess ActivityKind = "auth.register.success"
	ActivityLoginSuccess    ActivityKind = "auth.login.success"
	ActivityLoginFailure    ActivityKind = "auth.login.failure"
	ActivityLoginThrottled  ActivityKind = "auth.login.throttled"
)

// ActivityEvent captures audit-friendly information about an auth action.
// Events are recorded asynchronously and never block the request path.
type ActivityEvent struct {
	Username  string       `json:"username"`
	Kind      ActivityKind `json:"kind"`
	Timestamp time.Time    `json:"timestamp"`
	Detail    string       `json:"detail,omitempty"`
}
