package ports

import "github.com/notely/notes-api/internal/core/domain"

// Identity is the caller resolved by the auth middleware: the sole input the
// access evaluator and role authority need.
type Identity struct {
	UserID string
	Role   domain.Role
}

// RequestMeta carries the client context captured opportunistically for audit
// records.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// UserRef is the public projection of a user embedded in views.
type UserRef struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role,omitempty"`
}
