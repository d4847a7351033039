package ports

import "context"

// Permission names consulted by the allocation engine.
const (
	PermAllocationsCreate       = "allocations.create"
	PermAllocationsRead         = "allocations.read"
	PermAllocationsUpdate       = "allocations.update"
	PermAllocationsDelete       = "allocations.delete"
	PermAllocationsViewCapacity = "allocations.view_capacity"
)

// PermissionDecision is the outcome of a capability check.
type PermissionDecision struct {
	Granted bool
	Reason  string
}

// PermissionChecker answers a single yes/no capability question keyed by
// (user, permission name).
type PermissionChecker interface {
	HasPermission(ctx context.Context, orgID, userID, permission string) (PermissionDecision, error)
}
