package handler

import (
	"time"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

// --- Request types ---

type createNoteRequest struct {
	Title    string  `json:"title"    validate:"omitempty,max=200"`
	Content  string  `json:"content"  validate:"required"`
	Status   string  `json:"status"   validate:"omitempty"`
	Priority *int    `json:"priority" validate:"omitempty,gte=0,lte=1024"`
	Progress *int    `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Category string  `json:"category"`
	Deadline *string `json:"deadline"`
}

// updateNoteRequest is a partial update: absent fields stay untouched, which
// is why every field is a pointer.
type updateNoteRequest struct {
	Title    *string `json:"title"    validate:"omitempty,max=200"`
	Content  *string `json:"content"`
	Status   *string `json:"status"`
	Priority *int    `json:"priority" validate:"omitempty,gte=0,lte=1024"`
	Progress *int    `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Category *string `json:"category"`
	Deadline *string `json:"deadline"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type shareRequest struct {
	Email      string `json:"email"      validate:"required,email"`
	Permission string `json:"permission" validate:"omitempty,oneof=read comment write"`
}

type updateShareRequest struct {
	Permission string `json:"permission" validate:"omitempty,oneof=read comment write"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// --- Response types ---

// noteResponse is a note decorated with the viewer's access level and the
// owner's public identity. Comments are omitted from list payloads.
type noteResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Status      domain.Status     `json:"status"`
	Progress    int               `json:"progress"`
	Category    string            `json:"category"`
	Deadline    *time.Time        `json:"deadline"`
	Priority    int               `json:"priority"`
	IsDeleted   bool              `json:"isDeleted"`
	DeletedAt   *time.Time        `json:"deletedAt,omitempty"`
	Owner       ports.UserRef     `json:"owner"`
	Access      domain.Permission `json:"access"`
	SharedCount int               `json:"sharedCount,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func toNoteResponse(v ports.NoteView) noteResponse {
	n := v.Note
	return noteResponse{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Status:      n.Status,
		Progress:    n.Progress,
		Category:    n.Category,
		Deadline:    n.Deadline,
		Priority:    n.Priority,
		IsDeleted:   n.IsDeleted,
		DeletedAt:   n.DeletedAt,
		Owner:       v.Owner,
		Access:      v.Access,
		SharedCount: v.SharedCount,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toNoteResponses(views []ports.NoteView) []noteResponse {
	out := make([]noteResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toNoteResponse(v))
	}
	return out
}
