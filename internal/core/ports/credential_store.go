package ports

import (
	"context"

	"github.com/parkingapp/auth-service/internal/core/domain"
)

// CredentialStore defines the persistence contract for users, roles and
// access codes. Adapters translate backend failures into
// domain.ErrStoreUnavailable and duplicate-key conflicts into
// domain.ErrEmailTaken / domain.ErrUsernameTaken.
type CredentialStore interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	FindRoleByName(ctx context.Context, name string) (*domain.Role, error)

	FindAccessCodeByCode(ctx context.Context, code string) (*domain.AccessCode, error)
	SaveAccessCode(ctx context.Context, code *domain.AccessCode) error

	// CreateUserWithCode persists the new user and marks the access code as
	// used in a single atomic unit: either both changes commit or neither
	// does.
	CreateUserWithCode(ctx context.Context, user *domain.User, code *domain.AccessCode) error
}
