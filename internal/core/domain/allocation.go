package domain

import (
	"errors"
	"time"
)

// AllocationRole identifies the function a user fills on a project.
type AllocationRole string

const (
	RoleDeveloper       AllocationRole = "developer"
	RoleDesigner        AllocationRole = "designer"
	RoleProjectManager  AllocationRole = "project_manager"
	RoleBusinessAnalyst AllocationRole = "business_analyst"
	RoleTester          AllocationRole = "tester"
	RoleDevOps          AllocationRole = "devops"
	RoleArchitect       AllocationRole = "architect"
	RoleConsultant      AllocationRole = "consultant"
)

// allocationRoles is the closed set of valid roles.
var allocationRoles = map[AllocationRole]struct{}{
	RoleDeveloper:       {},
	RoleDesigner:        {},
	RoleProjectManager:  {},
	RoleBusinessAnalyst: {},
	RoleTester:          {},
	RoleDevOps:          {},
	RoleArchitect:       {},
	RoleConsultant:      {},
}

// Valid reports whether r is one of the known allocation roles.
func (r AllocationRole) Valid() bool {
	_, ok := allocationRoles[r]
	return ok
}

var ErrAllocationNotFound = errors.New("allocation not found")
var ErrProjectNotFound = errors.New("project not found")
var ErrForbidden = errors.New("access forbidden")

// Allocation commits a user to a project at a percentage of capacity for an
// inclusive date range. Dates are date-only: always midnight UTC.
type Allocation struct {
	ID             string            `json:"id" bson:"_id,omitempty"`
	OrganizationID string            `json:"organization_id" bson:"organization_id"`
	ProjectID      string            `json:"project_id" bson:"project_id"`
	UserID         string            `json:"user_id" bson:"user_id"`
	Role           AllocationRole    `json:"role" bson:"role"`
	Percent        float64           `json:"allocation_percent" bson:"allocation_percent"`
	StartDate      time.Time         `json:"start_date" bson:"start_date"`
	EndDate        time.Time         `json:"end_date" bson:"end_date"`
	Billable       bool              `json:"is_billable" bson:"is_billable"`
	Notes          map[string]string `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updated_at"`
	DeletedAt      *time.Time        `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

// Overlaps reports whether the allocation's inclusive date range shares at
// least one calendar day with [start, end]. A single shared boundary day
// counts as overlap.
func (a *Allocation) Overlaps(start, end time.Time) bool {
	return !a.StartDate.After(end) && !start.After(a.EndDate)
}

// Deleted reports whether the allocation has been soft-deleted.
func (a *Allocation) Deleted() bool {
	return a.DeletedAt != nil
}

// Project is the slice of project state the allocation engine needs:
// existence checks and name annotations on reports.
type Project struct {
	ID             string `json:"id" bson:"_id,omitempty"`
	OrganizationID string `json:"organization_id" bson:"organization_id"`
	Name           string `json:"name" bson:"name"`
}

// DateOnly truncates t to midnight UTC, the canonical form for allocation
// start/end dates.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
