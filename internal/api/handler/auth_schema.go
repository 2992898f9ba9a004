package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type registerRequest struct {
	Username   string `json:"username"    validate:"omitempty,min=3,max=64"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=8"`
	AccessCode string `json:"access_code" validate:"required"`
}

type registerResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password"   validate:"required"`
}

// Response-only types owned by the transport layer, kept separate from
// ports/domain types so the JSON contract is not coupled to internal
// service changes.

type userSummaryResponse struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	PrimaryRole string   `json:"primary_role"`
	Roles       []string `json:"roles"`
}

type loginResponse struct {
	Token     string              `json:"token"`
	TokenType string              `json:"token_type"`
	User      userSummaryResponse `json:"user"`
}

type activityResponse struct {
	Username  string    `json:"username"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}
