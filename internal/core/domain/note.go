package domain

import (
	"strings"
	"time"
)

// Status is the coarse three-way projection of a note's progress.
type Status string

const (
	StatusNotDone   Status = "not_done"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

// ParseStatus normalizes a status string (case-insensitive, spaces collapse to
// underscores, with a few common aliases) and validates it.
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.Join(strings.Fields(norm), "_")
	switch norm {
	case "todo", "pending", "notdone":
		norm = "not_done"
	}
	switch Status(norm) {
	case StatusNotDone:
		return StatusNotDone, true
	case StatusDone:
		return StatusDone, true
	case StatusCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// DeriveStatus projects the final status from the current status and progress.
// Cancellation is sticky: once cancelled, only an explicit status change away
// from cancelled (applied before calling this) clears it. Values strictly
// between 0 and 100 collapse to not_done; progress itself stays the
// fine-grained source of truth.
func DeriveStatus(current Status, progress int) Status {
	if current == StatusCancelled {
		return StatusCancelled
	}
	if progress >= 100 {
		return StatusDone
	}
	return StatusNotDone
}

// Categories form a fixed set so list filtering stays stable.
const (
	CategoryStudy    = "Study"
	CategoryHealth   = "Health"
	CategoryFinance  = "Finance"
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
	CategoryOther    = "Other"
)

var categories = []string{
	CategoryStudy, CategoryHealth, CategoryFinance,
	CategoryWork, CategoryPersonal, CategoryOther,
}

// Categories returns the allowed category values in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches a category case-insensitively, returning the canonical
// spelling. Blank input is reported as not-ok; callers decide the default.
func ParseCategory(s string) (string, bool) {
	c := strings.TrimSpace(s)
	if c == "" {
		return "", false
	}
	for _, known := range categories {
		if strings.EqualFold(known, c) {
			return known, true
		}
	}
	return "", false
}

// Permission is a caller's effective access level on a note, ordered
// owner > write > comment > read > none.
type Permission string

const (
	PermissionNone    Permission = "none"
	PermissionRead    Permission = "read"
	PermissionComment Permission = "comment"
	PermissionWrite   Permission = "write"
	PermissionOwner   Permission = "owner"
)

// ParsePermission validates a grantable permission (owner and none are derived
// levels, never granted).
func ParsePermission(s string) (Permission, bool) {
	switch Permission(strings.ToLower(strings.TrimSpace(s))) {
	case PermissionRead:
		return PermissionRead, true
	case PermissionComment:
		return PermissionComment, true
	case PermissionWrite:
		return PermissionWrite, true
	default:
		return "", false
	}
}

// CanRead reports whether the level allows viewing the note at all.
func (p Permission) CanRead() bool {
	switch p {
	case PermissionOwner, PermissionWrite, PermissionComment, PermissionRead:
		return true
	default:
		return false
	}
}

// CanComment reports whether the level allows appending comments.
func (p Permission) CanComment() bool {
	switch p {
	case PermissionOwner, PermissionWrite, PermissionComment:
		return true
	default:
		return false
	}
}

// CanWrite reports whether the level allows editing note fields.
func (p Permission) CanWrite() bool {
	switch p {
	case PermissionOwner, PermissionWrite:
		return true
	default:
		return false
	}
}

// CanManageShares reports whether the level allows grant/revoke of shares.
// Only the owner holds this.
func (p Permission) CanManageShares() bool {
	return p == PermissionOwner
}

// ShareGrant attaches a (user, permission) pair to a note. One grant per user;
// re-sharing overwrites the permission in place.
type ShareGrant struct {
	UserID     string     `json:"user"`
	Permission Permission `json:"permission"`
	SharedAt   time.Time  `json:"sharedAt"`
	SharedBy   string     `json:"sharedBy"`
}

// Comment is an append-only note annotation.
type Comment struct {
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Priority and progress bounds.
const (
	MinPriority = 0
	MaxPriority = 1024
	MinProgress = 0
	MaxProgress = 100
)

// Note is the core aggregate: owner, mutable fields, embedded shares and
// comments, and soft-delete markers.
type Note struct {
	ID         string       `json:"id"`
	OwnerID    string       `json:"user"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	Status     Status       `json:"status"`
	Progress   int          `json:"progress"`
	Category   string       `json:"category"`
	Deadline   *time.Time   `json:"deadline"`
	Priority   int          `json:"priority"`
	IsDeleted  bool         `json:"isDeleted"`
	DeletedAt  *time.Time   `json:"deletedAt"`
	SharedWith []ShareGrant `json:"sharedWith"`
	Comments   []Comment    `json:"comments"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// EffectivePermission computes the caller's access level: owner, else the
// matching share grant's permission, else none. sharedWith holds human
// collaborator counts, so a linear scan is fine.
func (n *Note) EffectivePermission(userID string) Permission {
	if userID == "" {
		return PermissionNone
	}
	if n.OwnerID == userID {
		return PermissionOwner
	}
	for _, g := range n.SharedWith {
		if g.UserID == userID {
			return g.Permission
		}
	}
	return PermissionNone
}

// GrantFor returns the share entry for a user, if any.
func (n *Note) GrantFor(userID string) (*ShareGrant, bool) {
	for i := range n.SharedWith {
		if n.SharedWith[i].UserID == userID {
			return &n.SharedWith[i], true
		}
	}
	return nil, false
}
