package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

// Audit-log paging bounds.
const (
	auditDefaultLimit = 100
	auditMaxLimit     = 500
)

// AdminService is the role authority and the staff/admin query surface. It
// composes the note rules without an ownership gate; the RBAC middleware
// already filters callers, and the service re-checks roles so the contracts
// hold even when invoked directly.
type AdminService struct {
	users    ports.UserRepository
	notes    ports.NoteRepository
	audits   ports.AuditRepository
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

func NewAdminService(users ports.UserRepository, notes ports.NoteRepository, audits ports.AuditRepository, recorder ports.AuditRecorder, log zerolog.Logger) *AdminService {
	return &AdminService{users: users, notes: notes, audits: audits, recorder: recorder, log: log}
}

func requireAdmin(actor ports.Identity) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func requireStaff(actor ports.Identity) error {
	if !actor.Role.IsStaff() {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, actor ports.Identity, search string) ([]*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.Search(ctx, strings.TrimSpace(search))
}

func (s *AdminService) ListUsersLite(ctx context.Context, actor ports.Identity) ([]ports.UserLite, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	users, err := s.users.ListLite(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ports.UserLite, 0, len(users))
	for _, u := range users {
		out = append(out, ports.UserLite{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
			IsBanned: u.IsBanned,
		})
	}
	return out, nil
}

func (s *AdminService) UpdateUserRole(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, targetID, role string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateID("id", targetID); err != nil {
		return nil, err
	}

	newRole, ok := domain.ParseRole(role)
	if !ok {
		return nil, domain.Validationf("role", "invalid role, allowed: user, moderator, admin")
	}

	// Self-lockout guard: an admin may not demote themself.
	if actor.UserID == targetID && newRole != domain.RoleAdmin {
		return nil, domain.Validationf("role", "you cannot change your own role away from admin")
	}

	before, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.UpdateRole(ctx, targetID, newRole)
	if err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionUserRoleUpdate, domain.TargetUser, targetID, domain.Metadata{
		"from": before.Role,
		"to":   newRole,
	})
	s.log.Info().Str("user_id", targetID).Str("from", string(before.Role)).Str("to", string(newRole)).Msg("user role updated")
	return updated, nil
}

func (s *AdminService) SetUserBan(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, targetID string, banned bool, reason string) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateID("id", targetID); err != nil {
		return nil, err
	}
	if actor.UserID == targetID {
		return nil, domain.Validationf("id", "you cannot ban yourself")
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}

	var ban ports.BanUpdate
	if banned {
		now := time.Now().UTC()
		ban = ports.BanUpdate{
			IsBanned:  true,
			BannedAt:  &now,
			BanReason: strings.TrimSpace(reason),
			BannedBy:  actor.UserID,
		}
	}

	updated, err := s.users.SetBan(ctx, targetID, ban)
	if err != nil {
		return nil, err
	}

	if banned {
		s.audit(actor, meta, domain.ActionUserBan, domain.TargetUser, targetID, domain.Metadata{
			"reason": ban.BanReason,
		})
	} else {
		s.audit(actor, meta, domain.ActionUserUnban, domain.TargetUser, targetID, domain.Metadata{})
	}
	return updated, nil
}

func (s *AdminService) ListNotes(ctx context.Context, actor ports.Identity, in ports.StaffListNotesInput) ([]ports.NoteView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	filter := ports.StaffNoteFilter{
		IncludeDeleted: in.IncludeDeleted,
		Search:         strings.TrimSpace(in.Search),
	}
	if in.OwnerID != "" {
		if err := validateID("userId", in.OwnerID); err != nil {
			return nil, err
		}
		filter.OwnerID = in.OwnerID
	}

	notes, err := s.notes.StaffList(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, notes, actor.UserID)
}

func (s *AdminService) UpdateNote(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string, in ports.UpdateNoteInput) (*ports.NoteView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	before := noteSnapshot(note)
	if err := applyNoteUpdate(note, in); err != nil {
		return nil, err
	}
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteEdit, domain.TargetNote, note.ID, domain.Metadata{
		"noteUser": note.OwnerID,
		"before":   before,
		"after":    noteSnapshot(note),
	})
	return s.view(ctx, note, actor.UserID)
}

func (s *AdminService) TrashNote(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) (*ports.NoteView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note.IsDeleted = true
	note.DeletedAt = &now
	note.UpdatedAt = now

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteTrash, domain.TargetNote, note.ID, domain.Metadata{
		"noteUser": note.OwnerID,
	})
	return s.view(ctx, note, actor.UserID)
}

func (s *AdminService) RestoreNote(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) (*ports.NoteView, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	note.IsDeleted = false
	note.DeletedAt = nil
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteRestore, domain.TargetNote, note.ID, domain.Metadata{
		"noteUser": note.OwnerID,
	})
	return s.view(ctx, note, actor.UserID)
}

// DeleteNote is the admin-only permanent removal; unlike the owner path it
// does not require the note to be trashed first.
func (s *AdminService) DeleteNote(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := validateID("id", noteID); err != nil {
		return err
	}

	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, note.ID); err != nil {
		return err
	}

	s.audit(actor, meta, domain.ActionNoteDeletePermanent, domain.TargetNote, note.ID, domain.Metadata{
		"noteUser": note.OwnerID,
		"title":    note.Title,
	})
	return nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, actor ports.Identity, q ports.AuditLogQuery) (*ports.AuditLogPage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = auditDefaultLimit
	}
	if limit > auditMaxLimit {
		limit = auditMaxLimit
	}

	filter := ports.AuditLogFilter{
		Action:     strings.TrimSpace(q.Action),
		TargetType: strings.TrimSpace(q.TargetType),
		TargetID:   strings.TrimSpace(q.TargetID),
		Page:       page,
		Limit:      limit,
	}

	if q.ActorID != "" {
		if err := validateID("actorId", q.ActorID); err != nil {
			return nil, err
		}
		filter.ActorID = q.ActorID
	}

	if strings.TrimSpace(q.DateFrom) != "" {
		from, err := parseDate(q.DateFrom)
		if err != nil {
			return nil, domain.Validationf("dateFrom", "must be a valid date")
		}
		filter.DateFrom = *from
	}
	if strings.TrimSpace(q.DateTo) != "" {
		to, err := parseDate(q.DateTo)
		if err != nil {
			return nil, domain.Validationf("dateTo", "must be a valid date")
		}
		filter.DateTo = *to
	}

	records, total, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ActorID)
	}
	actors, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	logs := make([]ports.AuditLogView, 0, len(records))
	for _, r := range records {
		logs = append(logs, ports.AuditLogView{
			Record: *r,
			Actor:  userRef(actors[r.ActorID], r.ActorID),
		})
	}

	return &ports.AuditLogPage{Total: total, Page: page, Limit: limit, Logs: logs}, nil
}

func (s *AdminService) decorate(ctx context.Context, notes []*domain.Note, viewerID string) ([]ports.NoteView, error) {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.OwnerID)
	}
	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildNoteViews(notes, owners, viewerID), nil
}

func (s *AdminService) view(ctx context.Context, note *domain.Note, viewerID string) (*ports.NoteView, error) {
	views, err := s.decorate(ctx, []*domain.Note{note}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// noteSnapshot captures the mutable fields for before/after audit metadata.
func noteSnapshot(n *domain.Note) domain.Metadata {
	return domain.Metadata{
		"title":     n.Title,
		"content":   n.Content,
		"status":    n.Status,
		"progress":  n.Progress,
		"category":  n.Category,
		"deadline":  n.Deadline,
		"priority":  n.Priority,
		"isDeleted": n.IsDeleted,
	}
}

func (s *AdminService) audit(actor ports.Identity, meta ports.RequestMeta, action, targetType, targetID string, md domain.Metadata) {
	s.recorder.Record(domain.AuditRecord{
		ActorID:    actor.UserID,
		ActorRole:  actor.Role,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   domain.NormalizeMetadata(md),
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		CreatedAt:  time.Now().UTC(),
	})
}
