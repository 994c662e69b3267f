package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

func newID() string { return primitive.NewObjectID().Hex() }

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func cloneNote(n *domain.Note) *domain.Note {
	if n == nil {
		return nil
	}
	clone := *n
	clone.SharedWith = append([]domain.ShareGrant(nil), n.SharedWith...)
	clone.Comments = append([]domain.Comment(nil), n.Comments...)
	return &clone
}

// --- user repository stub ---

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) add(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = newID()
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, domain.ErrUserExists
		}
	}
	return r.add(cloneUser(u)), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Search(_ context.Context, keyword string) ([]*domain.User, error) {
	kw := strings.ToLower(keyword)
	var out []*domain.User
	for _, u := range r.users {
		if kw == "" || strings.Contains(strings.ToLower(u.Username), kw) || strings.Contains(strings.ToLower(u.Email), kw) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubUserRepo) ListLite(_ context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetBan(_ context.Context, id string, ban ports.BanUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsBanned = ban.IsBanned
	u.BannedAt = ban.BannedAt
	u.BanReason = ban.BanReason
	u.BannedBy = ban.BannedBy
	u.UpdatedAt = time.Now().UTC()
	return cloneUser(u), nil
}

// --- note repository stub ---

type stubNoteRepo struct {
	notes map[string]*domain.Note
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{notes: make(map[string]*domain.Note)}
}

func (r *stubNoteRepo) add(n *domain.Note) *domain.Note {
	if n.ID == "" {
		n.ID = newID()
	}
	r.notes[n.ID] = cloneNote(n)
	return cloneNote(n)
}

func (r *stubNoteRepo) Create(_ context.Context, n *domain.Note) (*domain.Note, error) {
	return r.add(cloneNote(n)), nil
}

func (r *stubNoteRepo) FindByID(_ context.Context, id string) (*domain.Note, error) {
	if n, ok := r.notes[id]; ok {
		return cloneNote(n), nil
	}
	return nil, domain.ErrNoteNotFound
}

func (r *stubNoteRepo) FindVisible(_ context.Context, id, viewerID string) (*domain.Note, error) {
	n, ok := r.notes[id]
	if !ok || n.IsDeleted || !n.EffectivePermission(viewerID).CanRead() {
		return nil, domain.ErrNoteNotFound
	}
	return cloneNote(n), nil
}

func (r *stubNoteRepo) List(_ context.Context, f ports.NoteListFilter) ([]*domain.Note, error) {
	var out []*domain.Note
	for _, n := range r.notes {
		if n.IsDeleted {
			continue
		}
		owned := n.OwnerID == f.ViewerID
		_, shared := n.GrantFor(f.ViewerID)
		switch f.Scope {
		case ports.ScopeMine:
			if !owned {
				continue
			}
		case ports.ScopeShared:
			if !shared {
				continue
			}
		default:
			if !owned && !shared {
				continue
			}
		}
		if f.Status != "" && n.Status != f.Status {
			continue
		}
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Search != "" {
			kw := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(n.Title), kw) &&
				!strings.Contains(strings.ToLower(n.Content), kw) &&
				!strings.Contains(strings.ToLower(n.Category), kw) {
				continue
			}
		}
		out = append(out, cloneNote(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *stubNoteRepo) ListTrash(_ context.Context, ownerID string) ([]*domain.Note, error) {
	var out []*domain.Note
	for _, n := range r.notes {
		if n.IsDeleted && n.OwnerID == ownerID {
			out = append(out, cloneNote(n))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DeletedAt.Equal(*out[j].DeletedAt) {
			return out[i].DeletedAt.After(*out[j].DeletedAt)
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *stubNoteRepo) Update(_ context.Context, n *domain.Note) error {
	existing, ok := r.notes[n.ID]
	if !ok {
		return domain.ErrNoteNotFound
	}
	updated := cloneNote(n)
	updated.Comments = existing.Comments
	r.notes[n.ID] = updated
	return nil
}

func (r *stubNoteRepo) AppendComment(_ context.Context, noteID string, c domain.Comment) error {
	n, ok := r.notes[noteID]
	if !ok {
		return domain.ErrNoteNotFound
	}
	n.Comments = append(n.Comments, c)
	return nil
}

func (r *stubNoteRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.notes[id]; !ok {
		return domain.ErrNoteNotFound
	}
	delete(r.notes, id)
	return nil
}

func (r *stubNoteRepo) StaffList(_ context.Context, f ports.StaffNoteFilter) ([]*domain.Note, error) {
	var out []*domain.Note
	for _, n := range r.notes {
		if !f.IncludeDeleted && n.IsDeleted {
			continue
		}
		if f.OwnerID != "" && n.OwnerID != f.OwnerID {
			continue
		}
		if f.Search != "" {
			kw := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(n.Title), kw) &&
				!strings.Contains(strings.ToLower(n.Content), kw) &&
				!strings.Contains(strings.ToLower(n.Category), kw) {
				continue
			}
		}
		out = append(out, cloneNote(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// --- audit repository stub ---

type stubAuditRepo struct {
	records []*domain.AuditRecord
}

func (r *stubAuditRepo) Insert(_ context.Context, rec *domain.AuditRecord) error {
	clone := *rec
	r.records = append(r.records, &clone)
	return nil
}

func (r *stubAuditRepo) List(_ context.Context, f ports.AuditLogFilter) ([]*domain.AuditRecord, int64, error) {
	var matches []*domain.AuditRecord
	for _, rec := range r.records {
		if f.ActorID != "" && rec.ActorID != f.ActorID {
			continue
		}
		if f.Action != "" && rec.Action != f.Action {
			continue
		}
		if f.TargetType != "" && rec.TargetType != f.TargetType {
			continue
		}
		if f.TargetID != "" && rec.TargetID != f.TargetID {
			continue
		}
		if !f.DateFrom.IsZero() && rec.CreatedAt.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && rec.CreatedAt.After(f.DateTo) {
			continue
		}
		matches = append(matches, rec)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })

	total := int64(len(matches))
	start := (f.Page - 1) * f.Limit
	if start > len(matches) {
		start = len(matches)
	}
	end := start + f.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

// --- audit recorder stub ---

// recorderStub captures audit records synchronously so tests can assert on
// exactly what each operation emitted.
type recorderStub struct {
	mu      sync.Mutex
	records []domain.AuditRecord
}

func (r *recorderStub) Record(rec domain.AuditRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *recorderStub) all() []domain.AuditRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditRecord(nil), r.records...)
}

func (r *recorderStub) last() (domain.AuditRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == 0 {
		return domain.AuditRecord{}, false
	}
	return r.records[len(r.records)-1], true
}
