package ports

import (
	"context"
	"time"

	"github.com/notely/notes-api/internal/core/domain"
)

// CreateNoteInput carries the raw note creation payload. Enum-ish fields stay
// strings here; the service normalizes and validates them.
type CreateNoteInput struct {
	Title    string
	Content  string
	Status   string
	Priority *int
	Progress *int
	Category string
	Deadline *string // nil = absent, "" = none
}

// UpdateNoteInput is a partial update: nil fields are left untouched.
type UpdateNoteInput struct {
	Title    *string
	Content  *string
	Status   *string
	Priority *int
	Progress *int
	Category *string
	Deadline *string // "" clears the deadline
}

// ListNotesInput carries the primary list filters.
type ListNotesInput struct {
	Status   string
	Category string
	Search   string
	Scope    string
}

// NoteView is a note decorated with the viewer's access level and the owner's
// public identity. SharedCount is only populated for the owner; Comments are
// stripped from list payloads.
type NoteView struct {
	Note        domain.Note
	Owner       UserRef
	Access      domain.Permission
	SharedCount int
}

// ShareInput grants or updates access for the user behind Email.
type ShareInput struct {
	Email      string
	Permission string // defaults to read when empty
}

// ShareView is one resolved share entry.
type ShareView struct {
	User       UserRef           `json:"user"`
	Permission domain.Permission `json:"permission"`
	SharedAt   time.Time         `json:"sharedAt"`
}

// CommentView is one resolved comment.
type CommentView struct {
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// NoteService is the note authority: the resource-level state machine plus the
// permission gates in front of it. Every successful mutation emits exactly one
// audit record, fire-and-forget.
type NoteService interface {
	Create(ctx context.Context, actor Identity, in CreateNoteInput) (*domain.Note, error)
	List(ctx context.Context, actor Identity, in ListNotesInput) ([]NoteView, error)
	ListTrash(ctx context.Context, actor Identity) ([]*domain.Note, error)
	Get(ctx context.Context, actor Identity, noteID string) (*NoteView, error)
	Update(ctx context.Context, actor Identity, meta RequestMeta, noteID string, in UpdateNoteInput) (*domain.Note, error)
	UpdateStatus(ctx context.Context, actor Identity, meta RequestMeta, noteID, status string) (*domain.Note, error)
	Trash(ctx context.Context, actor Identity, meta RequestMeta, noteID string) (*domain.Note, error)
	Restore(ctx context.Context, actor Identity, meta RequestMeta, noteID string) (*domain.Note, error)
	HardDelete(ctx context.Context, actor Identity, meta RequestMeta, noteID string) error
	ListShares(ctx context.Context, actor Identity, noteID string) ([]ShareView, error)
	Share(ctx context.Context, actor Identity, meta RequestMeta, noteID string, in ShareInput) error
	UpdateShare(ctx context.Context, actor Identity, meta RequestMeta, noteID, shareUserID, permission string) error
	RemoveShare(ctx context.Context, actor Identity, meta RequestMeta, noteID, shareUserID string) error
	ListComments(ctx context.Context, actor Identity, noteID string) ([]CommentView, error)
	AddComment(ctx context.Context, actor Identity, meta RequestMeta, noteID, text string) error
}
