package ports

import "context"

// RegisterInput carries the registration request into the core. Username is
// optional; when blank a unique one is derived from the email local part.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	AccessCode string
}

// UserSummary is the public projection of a user returned after login.
type UserSummary struct {
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	PrimaryRole string   `json:"primary_role"`
	Roles       []string `json:"roles"`
}

// AuthResult bundles a freshly issued bearer token with the user summary.
// It is returned once per successful login and never stored.
type AuthResult struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	User      UserSummary `json:"user"`
}

// AuthService is the register/login contract consumed by the HTTP layer.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) error
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	Whoami(ctx context.Context, username string) (*UserSummary, error)
}
