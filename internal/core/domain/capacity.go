package domain

import "time"

// UserWeekCapacity is one per-user-per-week entry in a capacity summary.
// Actual hours come from a separate time-tracking service that is not wired
// into the allocation engine, so ActualHours/ActualPercent are always zero
// here and Variance is actual minus planned.
type UserWeekCapacity struct {
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name,omitempty"`
	WeekStart      time.Time `json:"week_start"`
	WeekEnd        time.Time `json:"week_end"`
	PlannedHours   float64   `json:"planned_hours"`
	ActualHours    float64   `json:"actual_hours"`
	PlannedPercent float64   `json:"planned_percent"`
	ActualPercent  float64   `json:"actual_percent"`
	VarianceHours  float64   `json:"variance_hours"`
}

// CapacityTotals sums each numeric field across all entries of a summary.
type CapacityTotals struct {
	PlannedHours   float64 `json:"planned_hours"`
	ActualHours    float64 `json:"actual_hours"`
	PlannedPercent float64 `json:"planned_percent"`
	ActualPercent  float64 `json:"actual_percent"`
	VarianceHours  float64 `json:"variance_hours"`
}

// CapacitySummary is the week-bucketed utilization view for one project over
// a trailing window. Entries are sparse: a user with no allocation touching a
// week has no entry for that week.
type CapacitySummary struct {
	ProjectID   string             `json:"project_id"`
	ProjectName string             `json:"project_name"`
	WindowStart time.Time          `json:"window_start"`
	WindowEnd   time.Time          `json:"window_end"`
	Entries     []UserWeekCapacity `json:"entries"`
	Totals      CapacityTotals     `json:"totals"`
}
