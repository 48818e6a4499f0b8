package port

import (
	"context"

	"github.com/arturoeanton/devmind-gateway/internal/domain"
)

// CredentialStore abstracts user-record persistence. The gateway only ever
// creates and reads users; deletion and updates are out of scope.
type CredentialStore interface {
	// CreateUser inserts a new user. Returns ErrDuplicateEmail if the
	// email is already registered.
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)

	// GetUserByEmail returns the user including the password hash, for
	// credential checks. Returns ErrUserNotFound if absent.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetUserByID returns the user without the password hash.
	// Returns ErrUserNotFound if absent.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}
