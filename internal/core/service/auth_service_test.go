package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parkingapp/auth-service/internal/core/domain"
	"github.com/parkingapp/auth-service/internal/core/ports"
	"github.com/parkingapp/auth-service/internal/core/token"
)

const testSecret = "0123456789ABCDEF0123456789ABCDEF"

// memStore is a deterministic in-memory CredentialStore for unit tests.
type memStore struct {
	users map[string]*domain.User // keyed by username
	roles map[string]*domain.Role
	codes map[string]*domain.AccessCode
}

func newMemStore() *memStore {
	s := &memStore{
		users: make(map[string]*domain.User),
		roles: make(map[string]*domain.Role),
		codes: make(map[string]*domain.AccessCode),
	}
	s.roles[domain.DefaultRoleName] = &domain.Role{Name: domain.DefaultRoleName}
	return s
}

func (s *memStore) addUser(u *domain.User) { s.users[u.Username] = u }

func (s *memStore) addCode(code string, used bool, expiresAt *time.Time) {
	s.codes[code] = &domain.AccessCode{Code: code, Used: used, ExpiresAt: expiresAt}
}

func (s *memStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := s.users[username]
	return ok, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *memStore) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *memStore) FindRoleByName(_ context.Context, name string) (*domain.Role, error) {
	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrRoleNotConfigured
	}
	return r, nil
}

func (s *memStore) FindAccessCodeByCode(_ context.Context, code string) (*domain.AccessCode, error) {
	c, ok := s.codes[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *memStore) SaveAccessCode(_ context.Context, code *domain.AccessCode) error {
	clone := *code
	s.codes[code.Code] = &clone
	return nil
}

func (s *memStore) CreateUserWithCode(_ context.Context, user *domain.User, code *domain.AccessCode) error {
	if _, exists := s.users[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	s.users[user.Username] = user
	clone := *code
	s.codes[code.Code] = &clone
	return nil
}

// fakeHasher is a transparent stand-in for the bcrypt adapter.
type fakeHasher struct{}

func (fakeHasher) Encode(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Matches(plaintext, hash string) bool     { return hash == "hashed:"+plaintext }

func newTestService(t *testing.T, store ports.CredentialStore) *AuthService {
	t.Helper()
	codec, err := token.NewCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return NewAuthService(store, fakeHasher{}, codec, domain.DefaultRoleName, zerolog.Nop())
}

func future(d time.Duration) *time.Time {
	t := time.Now().UTC().Add(d)
	return &t
}

func TestRegister_Success_ConsumesCode(t *testing.T) {
	store := newMemStore()
	store.addCode("C1", false, future(24*time.Hour))
	svc := newTestService(t, store)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Email:      "new@ex.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := store.FindByUsername(context.Background(), "new")
	if err != nil {
		t.Fatalf("expected user derived from email local part: %v", err)
	}
	if user.PasswordHash != "hashed:pw123456" {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}
	if !user.Roles.Contains(domain.DefaultRoleName) {
		t.Fatalf("default role not attached: %v", user.Roles.Names())
	}
	if !store.codes["C1"].Used {
		t.Fatalf("access code not consumed")
	}

	// Same code again must be rejected as already used.
	err = svc.Register(context.Background(), ports.RegisterInput{
		Email:      "other@ex.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if !errors.Is(err, domain.ErrCodeAlreadyUsed) {
		t.Fatalf("expected ErrCodeAlreadyUsed, got %v", err)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{Username: "bob", Email: "bob@ex.com"})
	store.addCode("C1", false, nil)
	svc := newTestService(t, store)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Email:      "bob@ex.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if store.codes["C1"].Used {
		t.Fatalf("code must not be consumed on failure")
	}
}

func TestRegister_CodeFailures(t *testing.T) {
	cases := []struct {
		name string
		code string
		prep func(*memStore)
		want error
	}{
		{"unknown", "NOPE", func(*memStore) {}, domain.ErrCodeNotFound},
		{"already used", "USED", func(s *memStore) { s.addCode("USED", true, nil) }, domain.ErrCodeAlreadyUsed},
		{"expired", "OLD", func(s *memStore) { s.addCode("OLD", false, future(-time.Minute)) }, domain.ErrCodeExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			tc.prep(store)
			svc := newTestService(t, store)

			err := svc.Register(context.Background(), ports.RegisterInput{
				Email:      "new@ex.com",
				Password:   "pw123456",
				AccessCode: tc.code,
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(store.users) != 0 {
				t.Fatalf("no user may be created on code failure")
			}
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{Username: "bob", Email: "old@ex.com"})
	store.addCode("C1", false, nil)
	svc := newTestService(t, store)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Username:   "bob",
		Email:      "new@ex.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestRegister_DerivesUsernameWithSuffix(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{Username: "bob", Email: "a@ex.com"})
	store.addUser(&domain.User{Username: "bob1", Email: "b@ex.com"})
	store.addCode("C1", false, nil)
	svc := newTestService(t, store)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Email:      "bob@x.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, ok := store.users["bob2"]; !ok {
		t.Fatalf("expected derived username bob2, have %v", usernames(store))
	}
}

func TestRegister_MisconfiguredRole(t *testing.T) {
	store := newMemStore()
	delete(store.roles, domain.DefaultRoleName)
	store.addCode("C1", false, nil)
	svc := newTestService(t, store)

	err := svc.Register(context.Background(), ports.RegisterInput{
		Email:      "new@ex.com",
		Password:   "pw123456",
		AccessCode: "C1",
	})
	if !errors.Is(err, domain.ErrRoleNotConfigured) {
		t.Fatalf("expected ErrRoleNotConfigured, got %v", err)
	}
	if len(store.users) != 0 {
		t.Fatalf("no user may be created when the role is missing")
	}
}

func TestLogin_Success(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{
		Username:     "carol",
		Email:        "carol@ex.com",
		PasswordHash: "hashed:s3cret99",
		Roles:        domain.NewRoleSet("ROLE_USER", "ROLE_ADMIN"),
	})
	svc := newTestService(t, store)

	result, err := svc.Login(context.Background(), "carol@ex.com", "s3cret99")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", result.TokenType)
	}
	if result.User.PrimaryRole != "ROLE_ADMIN" {
		t.Fatalf("primary role must be sorted-first, got %q", result.User.PrimaryRole)
	}
	if len(result.User.Roles) != 2 || result.User.Roles[0] != "ROLE_ADMIN" {
		t.Fatalf("unexpected role set %v", result.User.Roles)
	}

	codec, _ := token.NewCodec(testSecret, time.Hour)
	subject, err := codec.ExtractSubject(result.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if subject != "carol" {
		t.Fatalf("token subject must be the username, got %q", subject)
	}
}

func TestLogin_ByUsername(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{
		Username:     "carol",
		Email:        "carol@ex.com",
		PasswordHash: "hashed:s3cret99",
		Roles:        domain.NewRoleSet("ROLE_USER"),
	})
	svc := newTestService(t, store)

	if _, err := svc.Login(context.Background(), "carol", "s3cret99"); err != nil {
		t.Fatalf("Login by username: %v", err)
	}
}

func TestLogin_NoEnumerationSignal(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{
		Username:     "dave",
		Email:        "dave@ex.com",
		PasswordHash: "hashed:goodpass",
		Roles:        domain.NewRoleSet("ROLE_USER"),
	})
	svc := newTestService(t, store)

	_, wrongPass := svc.Login(context.Background(), "dave@ex.com", "badpass")
	_, noUser := svc.Login(context.Background(), "ghost@ex.com", "whatever")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(noUser, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("failure kinds must be indistinguishable: %q vs %q", wrongPass, noUser)
	}
}

func TestLogin_EmptyRoleSetFallsBackToDefault(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{
		Username:     "erin",
		Email:        "erin@ex.com",
		PasswordHash: "hashed:pw",
		Roles:        domain.NewRoleSet(),
	})
	svc := newTestService(t, store)

	result, err := svc.Login(context.Background(), "erin@ex.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.PrimaryRole != domain.DefaultRoleName {
		t.Fatalf("expected fallback primary role, got %q", result.User.PrimaryRole)
	}
}

type denyThrottle struct{}

func (denyThrottle) Allow(context.Context, string) (bool, error) { return false, nil }
func (denyThrottle) Reset(context.Context, string) error         { return nil }

func TestLogin_Throttled(t *testing.T) {
	store := newMemStore()
	svc := newTestService(t, store).WithThrottle(denyThrottle{})

	if _, err := svc.Login(context.Background(), "dave@ex.com", "pw"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestWhoami(t *testing.T) {
	store := newMemStore()
	store.addUser(&domain.User{
		Username: "carol",
		Email:    "carol@ex.com",
		Roles:    domain.NewRoleSet("ROLE_USER"),
	})
	svc := newTestService(t, store)

	summary, err := svc.Whoami(context.Background(), "carol")
	if err != nil {
		t.Fatalf("Whoami: %v", err)
	}
	if summary.Email != "carol@ex.com" || summary.PrimaryRole != "ROLE_USER" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func usernames(s *memStore) []string {
	names := make([]string, 0, len(s.users))
	for n := range s.users {
		names = append(names, n)
	}
	return names
}
