package ports

import (
	"context"
	"time"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

// Actor identifies who is performing an operation and in which tenant.
// Populated by the transport layer from the verified JWT claims.
type Actor struct {
	UserID         string
	OrganizationID string
}

// CreateAllocationInput carries all data needed to create an allocation.
// Dates are date-only (midnight UTC).
type CreateAllocationInput struct {
	ProjectID string
	UserID    string
	Role      string
	Percent   float64
	StartDate time.Time
	EndDate   time.Time
	Billable  bool
	Notes     map[string]string
}

// UpdateAllocationInput is a partial patch; nil fields are left unchanged.
type UpdateAllocationInput struct {
	Role      *string
	Percent   *float64
	StartDate *time.Time
	EndDate   *time.Time
	Billable  *bool
	Notes     map[string]string
}

// ListAllocationsInput carries filters and pagination for the list operation.
type ListAllocationsInput struct {
	ProjectID string
	UserID    string
	Role      string
	Billable  *bool
	DateFrom  time.Time
	DateTo    time.Time
	Page      int
	Limit     int
}

// ListAllocationsResult is one page of allocations plus pagination metadata.
type ListAllocationsResult struct {
	Items      []domain.Allocation
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// AllocationService defines the allocation engine's use-case operations.
// Each operation checks the acting user's permission, surfaces failures
// synchronously, and emits an audit event on successful mutation.
type AllocationService interface {
	Create(ctx context.Context, actor Actor, input CreateAllocationInput) (*domain.Allocation, error)
	Get(ctx context.Context, actor Actor, id string) (*domain.Allocation, error)
	Update(ctx context.Context, actor Actor, id string, patch UpdateAllocationInput) (*domain.Allocation, error)
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, actor Actor, input ListAllocationsInput) (*ListAllocationsResult, error)
	ProjectCapacity(ctx context.Context, actor Actor, projectID string, weeks int) (*domain.CapacitySummary, error)
}
