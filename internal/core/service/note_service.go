package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/notely/notes-api/internal/api/metrics"
	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

// NoteService is the note authority: status/progress derivation, soft-delete
// lifecycle, sharing grants, and comments, with the access evaluator in front
// of every mutation.
type NoteService struct {
	notes    ports.NoteRepository
	users    ports.UserRepository
	recorder ports.AuditRecorder
	log      zerolog.Logger
}

func NewNoteService(notes ports.NoteRepository, users ports.UserRepository, recorder ports.AuditRecorder, log zerolog.Logger) *NoteService {
	return &NoteService{notes: notes, users: users, recorder: recorder, log: log}
}

func (s *NoteService) Create(ctx context.Context, actor ports.Identity, in ports.CreateNoteInput) (*domain.Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, domain.Validationf("content", "content is required")
	}

	var status domain.Status
	if strings.TrimSpace(in.Status) != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return nil, domain.Validationf("status", "invalid status, allowed: not_done, done, cancelled")
		}
		status = st
	}

	priority := 0
	if in.Priority != nil {
		if err := validatePriority(*in.Priority); err != nil {
			return nil, err
		}
		priority = *in.Priority
	}

	var progress int
	if in.Progress != nil {
		if err := validateProgress(*in.Progress); err != nil {
			return nil, err
		}
		progress = *in.Progress
	} else if status == domain.StatusDone {
		progress = domain.MaxProgress
	}

	category := domain.CategoryOther
	if strings.TrimSpace(in.Category) != "" {
		c, ok := domain.ParseCategory(in.Category)
		if !ok {
			return nil, domain.Validationf("category", "invalid category, allowed: %s", strings.Join(domain.Categories(), ", "))
		}
		category = c
	}

	var deadline *time.Time
	if in.Deadline != nil {
		d, err := parseDate(*in.Deadline)
		if err != nil {
			return nil, err
		}
		deadline = d
	}

	now := time.Now().UTC()
	note := &domain.Note{
		OwnerID:    actor.UserID,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Status:     domain.DeriveStatus(status, progress),
		Progress:   progress,
		Category:   category,
		Deadline:   deadline,
		Priority:   priority,
		SharedWith: []domain.ShareGrant{},
		Comments:   []domain.Comment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.notes.Create(ctx, note)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", actor.UserID).Msg("failed to create note")
		return nil, err
	}

	metrics.NotesCreatedTotal.WithLabelValues(category).Inc()
	s.log.Info().Str("note_id", created.ID).Str("user_id", actor.UserID).Msg("note created")
	return created, nil
}

func (s *NoteService) List(ctx context.Context, actor ports.Identity, in ports.ListNotesInput) ([]ports.NoteView, error) {
	filter := ports.NoteListFilter{ViewerID: actor.UserID, Search: strings.TrimSpace(in.Search)}

	switch in.Scope {
	case ports.ScopeMine, ports.ScopeShared:
		filter.Scope = in.Scope
	}

	if strings.TrimSpace(in.Status) != "" {
		st, ok := domain.ParseStatus(in.Status)
		if !ok {
			return nil, domain.Validationf("status", "invalid status, allowed: not_done, done, cancelled")
		}
		filter.Status = st
	}

	if strings.TrimSpace(in.Category) != "" {
		c, ok := domain.ParseCategory(in.Category)
		if !ok {
			return nil, domain.Validationf("category", "invalid category, allowed: %s", strings.Join(domain.Categories(), ", "))
		}
		filter.Category = c
	}

	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, notes, actor.UserID)
}

func (s *NoteService) ListTrash(ctx context.Context, actor ports.Identity) ([]*domain.Note, error) {
	return s.notes.ListTrash(ctx, actor.UserID)
}

func (s *NoteService) Get(ctx context.Context, actor ports.Identity, noteID string) (*ports.NoteView, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindVisible(ctx, noteID, actor.UserID)
	if err != nil {
		return nil, err
	}

	views, err := s.decorate(ctx, []*domain.Note{note}, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *NoteService) Update(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string, in ports.UpdateNoteInput) (*domain.Note, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindVisible(ctx, noteID, actor.UserID)
	if err != nil {
		return nil, err
	}

	access := note.EffectivePermission(actor.UserID)
	if !access.CanWrite() {
		return nil, domain.ErrForbidden
	}

	if err := applyNoteUpdate(note, in); err != nil {
		return nil, err
	}

	note.UpdatedAt = time.Now().UTC()
	if err := s.notes.Update(ctx, note); err != nil {
		s.log.Error().Err(err).Str("note_id", note.ID).Msg("failed to update note")
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteEdit, domain.TargetNote, note.ID, domain.Metadata{
		"editorAccess": access,
	})
	return note, nil
}

func (s *NoteService) UpdateStatus(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID, status string) (*domain.Note, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	st, ok := domain.ParseStatus(status)
	if !ok {
		return nil, domain.Validationf("status", "invalid status, allowed: not_done, done, cancelled")
	}

	note, err := s.notes.FindVisible(ctx, noteID, actor.UserID)
	if err != nil {
		return nil, err
	}

	access := note.EffectivePermission(actor.UserID)
	if !access.CanWrite() {
		return nil, domain.ErrForbidden
	}

	note.Status = st
	switch st {
	case domain.StatusDone:
		note.Progress = domain.MaxProgress
	case domain.StatusNotDone:
		note.Progress = domain.MinProgress
	case domain.StatusCancelled:
		// progress keeps its last value
	}
	note.Status = domain.DeriveStatus(note.Status, note.Progress)
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteEdit, domain.TargetNote, note.ID, domain.Metadata{
		"editorAccess": access,
		"status":       note.Status,
		"progress":     note.Progress,
	})
	return note, nil
}

// Trash soft-deletes. Collaborators never qualify, write permission or not.
func (s *NoteService) Trash(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) (*domain.Note, error) {
	note, err := s.findLive(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	note.IsDeleted = true
	note.DeletedAt = &now
	note.UpdatedAt = now

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteTrash, domain.TargetNote, note.ID, domain.Metadata{
		"by": actor.UserID,
	})
	return note, nil
}

func (s *NoteService) Restore(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) (*domain.Note, error) {
	note, err := s.findTrashed(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != actor.UserID {
		return nil, domain.ErrForbidden
	}

	note.IsDeleted = false
	note.DeletedAt = nil
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	s.audit(actor, meta, domain.ActionNoteRestore, domain.TargetNote, note.ID, domain.Metadata{
		"by": actor.UserID,
	})
	return note, nil
}

// HardDelete permanently removes a trashed note with its comments and shares.
func (s *NoteService) HardDelete(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string) error {
	note, err := s.findTrashed(ctx, noteID)
	if err != nil {
		return err
	}
	if note.OwnerID != actor.UserID {
		return domain.ErrForbidden
	}

	if err := s.notes.Delete(ctx, note.ID); err != nil {
		return err
	}

	s.audit(actor, meta, domain.ActionNoteDeletePermanent, domain.TargetNote, note.ID, domain.Metadata{
		"by": actor.UserID,
	})
	return nil
}

func (s *NoteService) ListShares(ctx context.Context, actor ports.Identity, noteID string) ([]ports.ShareView, error) {
	note, err := s.findLive(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !note.EffectivePermission(actor.UserID).CanManageShares() {
		return nil, domain.ErrForbidden
	}

	ids := make([]string, 0, len(note.SharedWith))
	for _, g := range note.SharedWith {
		ids = append(ids, g.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ports.ShareView, 0, len(note.SharedWith))
	for _, g := range note.SharedWith {
		views = append(views, ports.ShareView{
			User:       userRef(users[g.UserID], g.UserID),
			Permission: g.Permission,
			SharedAt:   g.SharedAt,
		})
	}
	return views, nil
}

// Share grants access to the user behind the email, or updates the existing
// grant's permission. One entry per user, always.
func (s *NoteService) Share(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID string, in ports.ShareInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domain.Validationf("email", "email is required")
	}

	rawPerm := in.Permission
	if strings.TrimSpace(rawPerm) == "" {
		rawPerm = string(domain.PermissionRead)
	}
	perm, ok := domain.ParsePermission(rawPerm)
	if !ok {
		return domain.Validationf("permission", "invalid permission, allowed: read, comment, write")
	}

	note, err := s.findLive(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.EffectivePermission(actor.UserID).CanManageShares() {
		return domain.ErrForbidden
	}

	target, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if target.ID == note.OwnerID {
		return domain.Validationf("email", "cannot share a note with its owner")
	}

	action := domain.ActionNoteShareAdd
	if existing, found := note.GrantFor(target.ID); found {
		existing.Permission = perm
		action = domain.ActionNoteShareUpdate
	} else {
		note.SharedWith = append(note.SharedWith, domain.ShareGrant{
			UserID:     target.ID,
			Permission: perm,
			SharedAt:   time.Now().UTC(),
			SharedBy:   actor.UserID,
		})
	}

	note.UpdatedAt = time.Now().UTC()
	if err := s.notes.Update(ctx, note); err != nil {
		return err
	}

	s.audit(actor, meta, action, domain.TargetNote, note.ID, domain.Metadata{
		"sharedUserId": target.ID,
		"permission":   perm,
		"email":        email,
	})
	return nil
}

func (s *NoteService) UpdateShare(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID, shareUserID, permission string) error {
	if err := validateID("userId", shareUserID); err != nil {
		return err
	}

	if strings.TrimSpace(permission) == "" {
		permission = string(domain.PermissionRead)
	}
	perm, ok := domain.ParsePermission(permission)
	if !ok {
		return domain.Validationf("permission", "invalid permission, allowed: read, comment, write")
	}

	note, err := s.findLive(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.EffectivePermission(actor.UserID).CanManageShares() {
		return domain.ErrForbidden
	}

	grant, found := note.GrantFor(shareUserID)
	if !found {
		return domain.ErrShareNotFound
	}
	grant.Permission = perm
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return err
	}

	s.audit(actor, meta, domain.ActionNoteShareUpdate, domain.TargetNote, note.ID, domain.Metadata{
		"sharedUserId": shareUserID,
		"permission":   perm,
	})
	return nil
}

func (s *NoteService) RemoveShare(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID, shareUserID string) error {
	if err := validateID("userId", shareUserID); err != nil {
		return err
	}

	note, err := s.findLive(ctx, noteID)
	if err != nil {
		return err
	}
	if !note.EffectivePermission(actor.UserID).CanManageShares() {
		return domain.ErrForbidden
	}

	kept := note.SharedWith[:0]
	for _, g := range note.SharedWith {
		if g.UserID != shareUserID {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(note.SharedWith) {
		return domain.ErrShareNotFound
	}
	note.SharedWith = kept
	note.UpdatedAt = time.Now().UTC()

	if err := s.notes.Update(ctx, note); err != nil {
		return err
	}

	s.audit(actor, meta, domain.ActionNoteShareRemove, domain.TargetNote, note.ID, domain.Metadata{
		"sharedUserId": shareUserID,
	})
	return nil
}

func (s *NoteService) ListComments(ctx context.Context, actor ports.Identity, noteID string) ([]ports.CommentView, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}

	note, err := s.notes.FindVisible(ctx, noteID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !note.EffectivePermission(actor.UserID).CanRead() {
		return nil, domain.ErrForbidden
	}

	comments := make([]domain.Comment, len(note.Comments))
	copy(comments, note.Comments)
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ports.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, ports.CommentView{
			User:      userRef(users[c.UserID], c.UserID),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

func (s *NoteService) AddComment(ctx context.Context, actor ports.Identity, meta ports.RequestMeta, noteID, text string) error {
	if err := validateID("id", noteID); err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Validationf("text", "comment text is required")
	}

	note, err := s.notes.FindVisible(ctx, noteID, actor.UserID)
	if err != nil {
		return err
	}
	if !note.EffectivePermission(actor.UserID).CanComment() {
		return domain.ErrForbidden
	}

	comment := domain.Comment{
		UserID:    actor.UserID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notes.AppendComment(ctx, note.ID, comment); err != nil {
		return err
	}

	snippet := truncateRunes(text, 120)
	s.audit(actor, meta, domain.ActionNoteCommentAdd, domain.TargetNote, note.ID, domain.Metadata{
		"by":          actor.UserID,
		"textSnippet": snippet,
	})
	return nil
}

// truncateRunes caps s at max bytes without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// findLive fetches a note that is not in the trash, regardless of viewer.
// Ownership and permission checks happen at the call sites.
func (s *NoteService) findLive(ctx context.Context, noteID string) (*domain.Note, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.IsDeleted {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

func (s *NoteService) findTrashed(ctx context.Context, noteID string) (*domain.Note, error) {
	if err := validateID("id", noteID); err != nil {
		return nil, err
	}
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !note.IsDeleted {
		return nil, domain.ErrNoteNotFound
	}
	return note, nil
}

// decorate resolves owner identities and attaches the viewer's access level.
// Comments never travel in list payloads.
func (s *NoteService) decorate(ctx context.Context, notes []*domain.Note, viewerID string) ([]ports.NoteView, error) {
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

func buildNoteViews(notes []*domain.Note, owners map[string]*domain.User, viewerID string) []ports.NoteView {
	views := make([]ports.NoteView, 0, len(notes))
	for _, n := range notes {
		access := n.EffectivePermission(viewerID)
		view := ports.NoteView{
			Note:   *n,
			Owner:  userRef(owners[n.OwnerID], n.OwnerID),
			Access: access,
		}
		if access == domain.PermissionOwner {
			view.SharedCount = len(n.SharedWith)
		}
		view.Note.Comments = nil
		views = append(views, view)
	}
	return views
}

func userRef(u *domain.User, fallbackID string) ports.UserRef {
	if u == nil {
		return ports.UserRef{ID: fallbackID}
	}
	return ports.UserRef{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func (s *NoteService) audit(actor ports.Identity, meta ports.RequestMeta, action, targetType, targetID string, md domain.Metadata) {
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
