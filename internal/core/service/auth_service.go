package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/parkingapp/auth-service/internal/core/domain"
	"github.com/parkingapp/auth-service/internal/core/ports"
	"github.com/parkingapp/auth-service/internal/core/token"
)

// AuthService implements access-code-gated registration and token-issuing
// login. It holds no per-request state; every invocation is an independent
// unit of work.
type AuthService struct {
	store       ports.CredentialStore
	hasher      ports.PasswordHasher
	codec       *token.Codec
	gate        *AccessCodeGate
	throttle    ports.LoginThrottle
	activity    ports.ActivitySink
	defaultRole string
	logger      zerolog.Logger
}

func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	codec *token.Codec,
	defaultRole string,
	logger zerolog.Logger,
) *AuthService {
	if defaultRole == "" {
		defaultRole = domain.DefaultRoleName
	}
	return &AuthService{
		store:       store,
		hasher:      hasher,
		codec:       codec,
		gate:        NewAccessCodeGate(store),
		defaultRole: defaultRole,
		logger:      logger,
	}
}

// WithThrottle attaches a login rate limiter. Without one, Login never
// throttles.
func (s *AuthService) WithThrottle(throttle ports.LoginThrottle) *AuthService {
	s.throttle = throttle
	return s
}

// WithActivity attaches an audit-trail sink. Without one, no activity is
// recorded.
func (s *AuthService) WithActivity(sink ports.ActivitySink) *AuthService {
	s.activity = sink
	return s
}

// Register creates a new user gated by a single-use access code. No side
// effects occur unless the final persistence step commits: the user row and
// the consumed code land atomically or not at all.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) error {
	taken, err := s.store.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrEmailTaken
	}

	code, err := s.gate.Redeem(ctx, input.AccessCode)
	if err != nil {
		return err
	}

	username, err := s.resolveUsername(ctx, input.Username, input.Email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Encode(input.Password)
	if err != nil {
		return err
	}

	role, err := s.store.FindRoleByName(ctx, s.defaultRole)
	if err != nil {
		// A missing default role is a deployment defect, not bad input.
		s.logger.Error().Err(err).Str("role", s.defaultRole).Msg("default role missing from store")
		return domain.ErrRoleNotConfigured
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(role.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	code.Used = true
	if err := s.store.CreateUserWithCode(ctx, user, code); err != nil {
		return err
	}

	s.logger.Info().Str("username", username).Msg("user registered")
	s.emit(domain.ActivityRegisterSuccess, username, "")
	return nil
}

// resolveUsername picks the account name. A blank request derives a unique
// candidate from the email local part, appending an increasing numeric suffix
// until a free name is found. The store's unique index remains the backstop
// for concurrent claims of the same name.
func (s *AuthService) resolveUsername(ctx context.Context, requested, email string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		taken, err := s.store.ExistsByUsername(ctx, requested)
		if err != nil {
			return "", err
		}
		if taken {
			return "", domain.ErrUsernameTaken
		}
		return requested, nil
	}

	base := email
	if at := strings.Index(email, "@"); at > 0 {
		base = email[:at]
	}
	candidate := base
	for suffix := 1; ; suffix++ {
		taken, err := s.store.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(suffix)
	}
}

// Login verifies credentials and issues a bearer token. Unknown identifier
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.AuthResult, error) {
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, identifier)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable, failing open")
		} else if !allowed {
			s.emit(domain.ActivityLoginThrottled, identifier, "attempt budget exhausted")
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.emit(domain.ActivityLoginFailure, identifier, "unknown identifier")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Matches(password, user.PasswordHash) {
		s.emit(domain.ActivityLoginFailure, user.Username, "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, identifier); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	roles := user.Roles.Names()
	tok, err := s.codec.Issue(user.Username, roles)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", user.Username).Msg("user logged in")
	s.emit(domain.ActivityLoginSuccess, user.Username, "")

	return &ports.AuthResult{
		Token:     tok,
		TokenType: "Bearer",
		User: ports.UserSummary{
			Username:    user.Username,
			Email:       user.Email,
			PrimaryRole: user.Roles.Primary(s.defaultRole),
			Roles:       roles,
		},
	}, nil
}

// Whoami returns the summary for an already-authenticated username.
func (s *AuthService) Whoami(ctx context.Context, username string) (*ports.UserSummary, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &ports.UserSummary{
		Username:    user.Username,
		Email:       user.Email,
		PrimaryRole: user.Roles.Primary(s.defaultRole),
		Roles:       user.Roles.Names(),
	}, nil
}

func (s *AuthService) emit(kind domain.ActivityKind, username, detail string) {
	if s.activity == nil {
		return
	}
	s.activity.Emit(domain.ActivityEvent{
		Username:  username,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}

// findByIdentifier looks the user up by email when the identifier carries an
// "@", by username otherwise.
func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if strings.Contains(identifier, "@") {
		return s.store.FindByEmail(ctx, identifier)
	}
	return s.store.FindByUsername(ctx, identifier)
}
