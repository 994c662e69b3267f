package ports

import (
	"context"

	"github.com/notely/notes-api/internal/core/domain"
)

// AuthService implements registration, login, and self lookup. Every account
// is created with the user role; only the role authority changes it.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	// Login verifies credentials and returns a signed bearer token plus the
	// user. Banned accounts fail with BannedError before the password check
	// result is revealed.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}
