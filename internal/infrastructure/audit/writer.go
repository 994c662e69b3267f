// Package audit implements the fire-and-forget audit recorder: a fixed set of
// sharded workers draining buffered channels into the audit repository.
// Failures are logged and counted, never surfaced to the triggering operation.
package audit

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/notely/notes-api/internal/api/metrics"
	"github.com/notely/notes-api/internal/core/domain"
	"github.com/notely/notes-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 10 * time.Second
)

// Writer routes audit entries to workers by consistent hashing on the target
// id, so records for one resource are persisted in the order they were
// emitted.
type Writer struct {
	workers []chan domain.AuditRecord
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewWriter creates a Writer with numWorkers shards. If numWorkers <= 0,
// defaultWorkers is used.
func NewWriter(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Writer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &Writer{
		workers: make([]chan domain.AuditRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range w.workers {
		w.workers[i] = make(chan domain.AuditRecord, channelBuffer)
	}
	return w
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (w *Writer) Start(ctx context.Context) {
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Record enqueues an audit entry without blocking the caller. When the shard's
// buffer is full the entry is dropped and counted; audit is observability, not
// a transactional guarantee.
func (w *Writer) Record(rec domain.AuditRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	idx := w.shardIndex(rec.TargetID)
	select {
	case w.workers[idx] <- rec:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(w.workers[idx])))
	default:
		metrics.AuditWriteFailuresTotal.WithLabelValues("queue_full").Inc()
		w.log.Warn().
			Str("action", rec.Action).
			Str("target_id", rec.TargetID).
			Msg("audit queue full, entry dropped")
	}
}

func (w *Writer) shardIndex(targetID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(targetID))
	return int(h.Sum32()) % len(w.workers)
}

func (w *Writer) runWorker(ctx context.Context, id int, ch <-chan domain.AuditRecord) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			w.persist(rec, workerID)
		}
	}
}

func (w *Writer) persist(rec domain.AuditRecord, workerID string) {
	// Detached from the request context on purpose: the response may already
	// be on the wire by the time this runs.
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := w.repo.Insert(ctx, &rec); err != nil {
		metrics.AuditWriteFailuresTotal.WithLabelValues("insert_failed").Inc()
		w.log.Error().Err(err).
			Str("action", rec.Action).
			Str("actor", rec.ActorID).
			Str("target_id", rec.TargetID).
			Str("worker_id", workerID).
			Msg("audit record write failed")
		return
	}
	metrics.AuditRecordsTotal.WithLabelValues(rec.Action).Inc()
}
