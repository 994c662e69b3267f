package ports

import (
	"context"

	"github.com/notely/notes-api/internal/core/domain"
)

// List scopes for the primary note listing.
const (
	ScopeAll    = ""
	ScopeMine   = "mine"
	ScopeShared = "shared"
)

// NoteListFilter drives the caller-scoped note listing: the visible set is
// notes owned by ViewerID plus notes shared with them, never soft-deleted.
type NoteListFilter struct {
	ViewerID string
	Scope    string        // "", "mine" or "shared"
	Status   domain.Status // optional exact match
	Category string        // optional exact match
	Search   string        // optional case-insensitive substring on title/content/category
}

// StaffNoteFilter drives the privileged cross-user listing.
type StaffNoteFilter struct {
	OwnerID        string
	IncludeDeleted bool
	Search         string
}

// NoteRepository defines persistence for notes, including the embedded share
// and comment lists. Shares and comments live inside the note document, so no
// multi-document invariant exists.
type NoteRepository interface {
	Create(ctx context.Context, n *domain.Note) (*domain.Note, error)
	// FindByID retrieves a note regardless of deletion state (staff surface).
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// FindVisible retrieves a live note the viewer owns or is shared into;
	// anything else is ErrNoteNotFound.
	FindVisible(ctx context.Context, id, viewerID string) (*domain.Note, error)
	// List returns live visible notes sorted by priority desc, updatedAt desc.
	List(ctx context.Context, f NoteListFilter) ([]*domain.Note, error)
	// ListTrash returns the owner's soft-deleted notes, deletedAt desc.
	ListTrash(ctx context.Context, ownerID string) ([]*domain.Note, error)
	// Update persists the note's mutable fields (title, content, status,
	// progress, category, deadline, priority, soft-delete markers, shares)
	// with last-write-wins semantics. Comments are appended separately.
	Update(ctx context.Context, n *domain.Note) error
	AppendComment(ctx context.Context, noteID string, c domain.Comment) error
	// Delete removes the note document permanently, comments and shares with it.
	Delete(ctx context.Context, id string) error
	StaffList(ctx context.Context, f StaffNoteFilter) ([]*domain.Note, error)
}
