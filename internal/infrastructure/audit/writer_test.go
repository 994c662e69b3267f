package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

type captureRepo struct {
	mu      sync.Mutex
	records []*domain.AuditRecord
	fail    bool
}

func (r *captureRepo) Insert(_ context.Context, rec *domain.AuditRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("write failed")
	}
	clone := *rec
	r.records = append(r.records, &clone)
	return nil
}

func (r *captureRepo) List(context.Context, ports.AuditLogFilter) ([]*domain.AuditRecord, int64, error) {
	return nil, 0, nil
}

func (r *captureRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestWriter_PersistsRecords(t *testing.T) {
	repo := &captureRepo{}
	w := NewWriter(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 10; i++ {
		w.Record(domain.AuditRecord{
			ActorID:  "actor",
			Action:   domain.ActionNoteEdit,
			TargetID: "target",
		})
	}

	waitFor(t, func() bool { return repo.count() == 10 })

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.records[0].CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt stamped on enqueue")
	}
}

func TestWriter_SameTargetStaysOrdered(t *testing.T) {
	repo := &captureRepo{}
	w := NewWriter(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for i := 0; i < 20; i++ {
		w.Record(domain.AuditRecord{
			ActorID:   "actor",
			Action:    domain.ActionNoteEdit,
			TargetID:  "note-1",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		})
	}

	waitFor(t, func() bool { return repo.count() == 20 })

	repo.mu.Lock()
	defer repo.mu.Unlock()
	for i := 1; i < len(repo.records); i++ {
		if repo.records[i].CreatedAt.Before(repo.records[i-1].CreatedAt) {
			t.Fatalf("records for one target arrived out of order at %d", i)
		}
	}
}

func TestWriter_InsertFailureIsSwallowed(t *testing.T) {
	repo := &captureRepo{fail: true}
	w := NewWriter(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// Record never returns an error and never panics, whatever the repo does.
	w.Record(domain.AuditRecord{ActorID: "actor", Action: domain.ActionUserBan, TargetID: "u1"})

	time.Sleep(50 * time.Millisecond)
	if repo.count() != 0 {
		t.Fatalf("failing repo should not accumulate records")
	}
}

func TestWriter_DefaultWorkerCount(t *testing.T) {
	w := NewWriter(0, &captureRepo{}, zerolog.Nop())
	if len(w.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(w.workers))
	}
}
