package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. New roles are a compile-time
// addition: every decision point switches exhaustively over these values.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleModerator:
		return RoleModerator, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsStaff reports whether the role grants cross-user visibility into notes.
func (r Role) IsStaff() bool {
	switch r {
	case RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// User models an account. Role and ban state are independent: a banned user
// keeps its role.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsBanned     bool       `json:"isBanned"`
	BannedAt     *time.Time `json:"bannedAt,omitempty"`
	BanReason    string     `json:"banReason,omitempty"`
	BannedBy     string     `json:"bannedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
