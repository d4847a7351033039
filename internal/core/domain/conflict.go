package domain

import (
	"fmt"
	"time"
)

// ConflictType classifies a detected allocation conflict.
type ConflictType string

const (
	// ConflictExceeds100Percent is raised when a user's summed commitment
	// across overlapping allocations would exceed 100%.
	ConflictExceeds100Percent ConflictType = "exceeds_100_percent"
	// ConflictOverlap classifies a plain overlap without a limit breach.
	// Reserved: the engine never emits it, overlaps under 100% are allowed.
	ConflictOverlap ConflictType = "overlap"
)

// ConflictingAllocation annotates one existing allocation that contributes to
// an over-commitment. OverlapStart/OverlapEnd carry the candidate's requested
// window, not the exact intersection with this allocation.
type ConflictingAllocation struct {
	AllocationID    string         `json:"allocation_id"`
	ProjectID       string         `json:"project_id"`
	ProjectName     string         `json:"project_name,omitempty"`
	Role            AllocationRole `json:"role"`
	Percent         float64        `json:"allocation_percent"`
	StartDate       time.Time      `json:"start_date"`
	EndDate         time.Time      `json:"end_date"`
	OverlapStart    time.Time      `json:"overlap_start"`
	OverlapEnd      time.Time      `json:"overlap_end"`
	TotalAllocation float64        `json:"total_allocation"`
}

// ConflictReport explains why a candidate allocation was rejected.
// Built fresh on every check, never persisted.
type ConflictReport struct {
	UserID                 string                  `json:"user_id"`
	ConflictType           ConflictType            `json:"conflict_type"`
	TotalAllocation        float64                 `json:"total_allocation"`
	RequestedAllocation    float64                 `json:"requested_allocation"`
	ConflictingAllocations []ConflictingAllocation `json:"conflicting_allocations"`
}

// ConflictError carries the full report list so callers can explain the
// rejection without parsing message text.
type ConflictError struct {
	Reports []ConflictReport
}

func (e *ConflictError) Error() string {
	if len(e.Reports) == 0 {
		return "allocation conflict"
	}
	r := e.Reports[0]
	return fmt.Sprintf("allocation conflict for user %s: total %.2f%% exceeds 100%%", r.UserID, r.TotalAllocation)
}

// ValidationError reports structurally invalid input, rejected before any
// store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PermissionDeniedError reports a failed capability check.
type PermissionDeniedError struct {
	UserID     string
	Permission string
	Reason     string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("user %s lacks permission %s", e.UserID, e.Permission)
}
