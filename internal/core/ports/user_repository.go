package ports

import (
	"context"
	"time"

	"github.com/notely/notes-api/internal/core/domain"
)

// BanUpdate carries the full ban state written in one operation. Unbanning
// clears every field.
type BanUpdate struct {
	IsBanned  bool
	BannedAt  *time.Time
	BanReason string
	BannedBy  string
}

// UserRepository defines persistence operations for user accounts. Users are
// never hard-deleted.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail matches the lowercased email exactly.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDs returns the users for the given ids, keyed by id. Missing ids
	// are simply absent from the result.
	FindByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	// Search returns users whose username or email contains the keyword
	// (case-insensitive), newest first. Empty keyword returns everyone.
	Search(ctx context.Context, keyword string) ([]*domain.User, error)
	// ListLite returns all users sorted by username, for role/ban UI filtering.
	ListLite(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	SetBan(ctx context.Context, id string, ban BanUpdate) (*domain.User, error)
}
