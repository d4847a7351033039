// Package metrics defines and registers all custom Prometheus metrics for the
// Pivotal Flow allocation API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pivotalflow"

// ── Conflict detection ────────────────────────────────────────────────────────

// ConflictChecksTotal counts conflict-detector runs.
// Labels:
//   - operation: "create" or "update"
//   - result: "conflict" (mutation rejected) or "clear"
var ConflictChecksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "conflict_checks_total",
		Help:      "Total number of allocation conflict checks, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ConflictCheckDuration measures a single conflict check end-to-end,
// including the overlapping-allocations fetch.
// Label:
//   - operation: "create" or "update"
var ConflictCheckDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "conflict_check_duration_seconds",
		Help:      "Duration of allocation conflict checks from fetch to decision.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"operation"},
)

// ── Allocation lifecycle ──────────────────────────────────────────────────────

// AllocationMutationsTotal counts committed allocation mutations.
// Label:
//   - action: "create", "update", or "delete"
var AllocationMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "allocation_mutations_total",
		Help:      "Total number of committed allocation mutations, by action.",
	},
	[]string{"action"},
)

// CapacityQueriesTotal counts weekly capacity aggregations served.
var CapacityQueriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capacity_queries_total",
		Help:      "Total number of project capacity summaries computed.",
	},
)

// AuditLogFailuresTotal counts audit events that could not be recorded.
// Audit failures never block mutations, so this counter is the operator's
// only signal that the audit trail is incomplete.
var AuditLogFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_log_failures_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)
