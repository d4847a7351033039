package ports

import (
	"context"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

// AuditSink records create/update/delete events with before/after snapshots.
// Fire-and-forget from the engine's perspective: a sink failure never blocks
// the mutation that triggered it.
type AuditSink interface {
	LogEvent(ctx context.Context, event *domain.AuditEvent) error
}
