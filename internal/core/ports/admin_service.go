package ports

import (
	"context"

	"github.com/notely/notes-api/internal/core/domain"
)

// UserLite is the role-and-ban-only listing row usable by moderators.
type UserLite struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IsBanned bool        `json:"isBanned"`
}

// StaffListNotesInput drives the privileged note listing.
type StaffListNotesInput struct {
	OwnerID        string
	IncludeDeleted bool
	Search         string
}

// AuditLogQuery carries raw audit-log query parameters; dates are parsed and
// paging clamped by the service.
type AuditLogQuery struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	DateFrom   string
	DateTo     string
	Page       int
	Limit      int
}

// AuditLogView is a record with the actor's identity resolved.
type AuditLogView struct {
	Record domain.AuditRecord
	Actor  UserRef
}

// AuditLogPage is one page of the audit trail, newest first.
type AuditLogPage struct {
	Total int64
	Page  int
	Limit int
	Logs  []AuditLogView
}

// AdminService is the role authority plus the staff/admin query surface. Role
// and ban changes are admin-only; note listing and editing extend to
// moderators. It composes the same note rules with no ownership gate.
type AdminService interface {
	ListUsers(ctx context.Context, actor Identity, search string) ([]*domain.User, error)
	ListUsersLite(ctx context.Context, actor Identity) ([]UserLite, error)
	UpdateUserRole(ctx context.Context, actor Identity, meta RequestMeta, targetID, role string) (*domain.User, error)
	SetUserBan(ctx context.Context, actor Identity, meta RequestMeta, targetID string, banned bool, reason string) (*domain.User, error)
	ListNotes(ctx context.Context, actor Identity, in StaffListNotesInput) ([]NoteView, error)
	UpdateNote(ctx context.Context, actor Identity, meta RequestMeta, noteID string, in UpdateNoteInput) (*NoteView, error)
	TrashNote(ctx context.Context, actor Identity, meta RequestMeta, noteID string) (*NoteView, error)
	RestoreNote(ctx context.Context, actor Identity, meta RequestMeta, noteID string) (*NoteView, error)
	DeleteNote(ctx context.Context, actor Identity, meta RequestMeta, noteID string) error
	ListAuditLogs(ctx context.Context, actor Identity, q AuditLogQuery) (*AuditLogPage, error)
}
