package domain

import "time"

// Audit actions emitted by the allocation engine.
const (
	AuditAllocationCreate = "allocations.create"
	AuditAllocationUpdate = "allocations.update"
	AuditAllocationDelete = "allocations.delete"
)

// EntityResourceAllocation is the entity type recorded on allocation audit events.
const EntityResourceAllocation = "ResourceAllocation"

// AuditEvent records a mutation with before/after snapshots. Snapshots are
// nil for the side that does not exist (old on create, new on delete).
type AuditEvent struct {
	Action         string      `json:"action"`
	EntityType     string      `json:"entity_type"`
	EntityID       string      `json:"entity_id"`
	OrganizationID string      `json:"organization_id"`
	UserID         string      `json:"user_id"`
	OldValues      *Allocation `json:"old_values,omitempty"`
	NewValues      *Allocation `json:"new_values,omitempty"`
	RecordedAt     time.Time   `json:"recorded_at"`
}
