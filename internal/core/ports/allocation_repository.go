package ports

import (
	"context"
	"time"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

// ListAllocationsFilter carries all query parameters for listing allocations.
// OrganizationID is always set by the service layer; everything else is
// optional (zero value = no filter).
type ListAllocationsFilter struct {
	OrganizationID string
	ProjectID      string
	UserID         string
	Role           string
	Billable       *bool
	DateFrom       time.Time // allocations ending on or after this date
	DateTo         time.Time // allocations starting on or before this date
	Page           int       // 1-based
	Limit          int       // max rows per page (capped at 100 by service)
}

// AllocationRepository defines persistence operations for allocations.
// Every method is scoped to an organization and excludes soft-deleted rows
// unless stated otherwise.
type AllocationRepository interface {
	// FindOverlapping returns all non-deleted allocations for userID whose
	// inclusive date range overlaps [start, end]. When excludeID is non-empty
	// that record is omitted (self-exclusion on update).
	FindOverlapping(ctx context.Context, orgID, userID string, start, end time.Time, excludeID string) ([]domain.Allocation, error)

	// FindByProjectWindow returns all non-deleted allocations for projectID
	// whose date range overlaps [start, end].
	FindByProjectWindow(ctx context.Context, orgID, projectID string, start, end time.Time) ([]domain.Allocation, error)

	// FindByID returns the non-deleted allocation with the given id, or
	// domain.ErrAllocationNotFound when absent, soft-deleted, or owned by
	// another organization.
	FindByID(ctx context.Context, orgID, id string) (*domain.Allocation, error)

	Insert(ctx context.Context, a *domain.Allocation) error

	// Update persists the full record (the service merges patches before
	// calling). Returns domain.ErrAllocationNotFound when no live row matches.
	Update(ctx context.Context, a *domain.Allocation) error

	// SoftDelete sets deleted_at; the row is retained for audit history.
	SoftDelete(ctx context.Context, orgID, id string, deletedAt time.Time) error

	// List returns a page of allocations matching filter and the total count.
	List(ctx context.Context, filter ListAllocationsFilter) ([]domain.Allocation, int64, error)
}

// ProjectRepository resolves projects for capacity queries and report
// annotations.
type ProjectRepository interface {
	// FindByID returns the project or domain.ErrProjectNotFound when absent
	// or owned by another organization.
	FindByID(ctx context.Context, orgID, id string) (*domain.Project, error)

	// NamesByIDs resolves project display names for a set of ids. Unknown ids
	// are simply absent from the result.
	NamesByIDs(ctx context.Context, orgID string, ids []string) (map[string]string, error)
}
