// Package metrics defines the custom Prometheus metrics for the notes API. It
// is the single source of truth for metric names, labels, and help strings.
// HTTP-level metrics come from the echoprometheus middleware; these cover the
// domain-side counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "notes"

// NotesCreatedTotal counts newly created notes by category.
var NotesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of notes created, by category.",
	},
	[]string{"category"},
)

// AuditRecordsTotal counts audit records successfully persisted, by action tag.
var AuditRecordsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_records_total",
		Help:      "Total number of audit records written, by action.",
	},
	[]string{"action"},
)

// AuditWriteFailuresTotal counts audit records that could not be persisted.
// Audit writes are best-effort; this counter is the only place failures
// surface besides the log.
var AuditWriteFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit records that failed to persist, by reason (insert_failed/queue_full).",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks pending audit entries per writer shard.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each writer shard.",
	},
	[]string{"worker_id"},
)
