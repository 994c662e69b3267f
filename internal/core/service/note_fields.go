package service

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

// validateID rejects malformed document ids before any store access.
func validateID(field, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.Validationf(field, "invalid id")
	}
	return nil
}

func validatePriority(p int) error {
	if p < domain.MinPriority || p > domain.MaxPriority {
		return domain.Validationf("priority", "priority must be between %d and %d", domain.MinPriority, domain.MaxPriority)
	}
	return nil
}

func validateProgress(p int) error {
	if p < domain.MinProgress || p > domain.MaxProgress {
		return domain.Validationf("progress", "progress must be between %d and %d", domain.MinProgress, domain.MaxProgress)
	}
	return nil
}

// parseDate accepts RFC 3339 or a plain calendar date. An empty string
// clears the deadline.
func parseDate(raw string) (*time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, domain.Validationf("deadline", "deadline must be a valid date")
}

// applyNoteUpdate applies a partial update to a note in place: nil fields stay
// untouched, content cannot be blanked, and an explicit done/not_done status
// forces progress to 100/0 unless the same request carries an explicit
// progress value. The status is always re-derived last from the final
// progress/cancellation state, so the outcome is deterministic regardless of
// field order.
func applyNoteUpdate(note *domain.Note, in ports.UpdateNoteInput) error {
	if in.Title != nil {
		note.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		note.Content = *in.Content
	}

	if in.Priority != nil {
		if err := validatePriority(*in.Priority); err != nil {
			return err
		}
		note.Priority = *in.Priority
	}

	explicitProgress := in.Progress != nil
	if explicitProgress {
		if err := validateProgress(*in.Progress); err != nil {
			return err
		}
		note.Progress = *in.Progress
	}

	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			note.Category = domain.CategoryOther
		} else {
			c, ok := domain.ParseCategory(*in.Category)
			if !ok {
				return domain.Validationf("category", "invalid category, allowed: %s", strings.Join(domain.Categories(), ", "))
			}
			note.Category = c
		}
	}

	if in.Deadline != nil {
		d, err := parseDate(*in.Deadline)
		if err != nil {
			return err
		}
		note.Deadline = d
	}

	if in.Status != nil {
		st, ok := domain.ParseStatus(*in.Status)
		if !ok {
			return domain.Validationf("status", "invalid status, allowed: not_done, done, cancelled")
		}
		note.Status = st
		if !explicitProgress {
			switch st {
			case domain.StatusDone:
				note.Progress = domain.MaxProgress
			case domain.StatusNotDone:
				note.Progress = domain.MinProgress
			case domain.StatusCancelled:
				// progress untouched; cancellation freezes it
			}
		}
	}

	if strings.TrimSpace(note.Content) == "" {
		return domain.Validationf("content", "content cannot be empty")
	}

	note.Status = domain.DeriveStatus(note.Status, note.Progress)
	return nil
}
