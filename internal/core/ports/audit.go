package ports

import (
	"context"
	"time"

	"github.com/notely/notes-api/internal/core/domain"
)

// AuditLogFilter narrows the audit-log query. Zero values mean "no filter".
type AuditLogFilter struct {
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	DateFrom   time.Time
	DateTo     time.Time
	Page       int // 1-based
	Limit      int // rows per page
}

// AuditRepository persists and queries the append-only audit trail. Records
// are never updated or deleted.
type AuditRepository interface {
	Insert(ctx context.Context, rec *domain.AuditRecord) error
	// List returns one page of records sorted newest-first plus the total
	// count of matches.
	List(ctx context.Context, f AuditLogFilter) ([]*domain.AuditRecord, int64, error)
}

// AuditRecorder accepts audit entries fire-and-forget: Record never blocks the
// triggering operation and never reports failure to it.
type AuditRecorder interface {
	Record(rec domain.AuditRecord)
}
