package handler

import (
	"time"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

// dateLayout is the wire format for allocation dates. Dates are date-only;
// the time component is dropped on input and omitted on output.
const dateLayout = "2006-01-02"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createAllocationRequest struct {
	ProjectID string            `json:"project_id"         validate:"required"`
	UserID    string            `json:"user_id"            validate:"required"`
	Role      string            `json:"role"               validate:"required,oneof=developer designer project_manager business_analyst tester devops architect consultant"`
	Percent   float64           `json:"allocation_percent" validate:"required,gt=0,lte=100"`
	StartDate string            `json:"start_date"         validate:"required"`
	EndDate   string            `json:"end_date"           validate:"required"`
	Billable  bool              `json:"is_billable"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// updateAllocationRequest is a partial patch: absent fields leave the stored
// value untouched.
type updateAllocationRequest struct {
	Role      *string           `json:"role,omitempty"               validate:"omitempty,oneof=developer designer project_manager business_analyst tester devops architect consultant"`
	Percent   *float64          `json:"allocation_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
	StartDate *string           `json:"start_date,omitempty"`
	EndDate   *string           `json:"end_date,omitempty"`
	Billable  *bool             `json:"is_billable,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from domain types so the JSON contract is
// not coupled to internal service changes.

type allocationResponse struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	ProjectID      string            `json:"project_id"`
	UserID         string            `json:"user_id"`
	Role           string            `json:"role"`
	Percent        float64           `json:"allocation_percent"`
	StartDate      string            `json:"start_date"`
	EndDate        string            `json:"end_date"`
	Billable       bool              `json:"is_billable"`
	Notes          map[string]string `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func toAllocationResponse(a *domain.Allocation) allocationResponse {
	return allocationResponse{
		ID:             a.ID,
		OrganizationID: a.OrganizationID,
		ProjectID:      a.ProjectID,
		UserID:         a.UserID,
		Role:           string(a.Role),
		Percent:        a.Percent,
		StartDate:      a.StartDate.Format(dateLayout),
		EndDate:        a.EndDate.Format(dateLayout),
		Billable:       a.Billable,
		Notes:          a.Notes,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listAllocationsResponse struct {
	Data       []allocationResponse `json:"data"`
	Pagination paginationResponse   `json:"pagination"`
}

// conflictResponse is the 409 payload carrying the full conflict reports so
// clients can explain the rejection without parsing message text.
type conflictResponse struct {
	Error     string                  `json:"error"`
	Conflicts []domain.ConflictReport `json:"conflicts"`
}

type capacityEntryResponse struct {
	UserID         string  `json:"user_id"`
	UserName       string  `json:"user_name,omitempty"`
	WeekStart      string  `json:"week_start"`
	WeekEnd        string  `json:"week_end"`
	PlannedHours   float64 `json:"planned_hours"`
	ActualHours    float64 `json:"actual_hours"`
	PlannedPercent float64 `json:"planned_percent"`
	ActualPercent  float64 `json:"actual_percent"`
	VarianceHours  float64 `json:"variance_hours"`
}

type capacityResponse struct {
	ProjectID   string                  `json:"project_id"`
	ProjectName string                  `json:"project_name"`
	WindowStart string                  `json:"window_start"`
	WindowEnd   string                  `json:"window_end"`
	Entries     []capacityEntryResponse `json:"entries"`
	Totals      domain.CapacityTotals   `json:"totals"`
}

func toCapacityResponse(s *domain.CapacitySummary) capacityResponse {
	entries := make([]capacityEntryResponse, 0, len(s.Entries))
	for _, e := range s.Entries {
		entries = append(entries, capacityEntryResponse{
			UserID:         e.UserID,
			UserName:       e.UserName,
			WeekStart:      e.WeekStart.Format(dateLayout),
			WeekEnd:        e.WeekEnd.Format(dateLayout),
			PlannedHours:   e.PlannedHours,
			ActualHours:    e.ActualHours,
			PlannedPercent: e.PlannedPercent,
			ActualPercent:  e.ActualPercent,
			VarianceHours:  e.VarianceHours,
		})
	}
	return capacityResponse{
		ProjectID:   s.ProjectID,
		ProjectName: s.ProjectName,
		WindowStart: s.WindowStart.Format(dateLayout),
		WindowEnd:   s.WindowEnd.Format(dateLayout),
		Entries:     entries,
		Totals:      s.Totals,
	}
}
