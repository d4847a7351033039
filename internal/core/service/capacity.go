package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

// DefaultHoursPerWeek is the nominal full-time work week used to convert
// allocation percentages into planned hours. Overridable via configuration.
const DefaultHoursPerWeek = 40.0

// AggregateWeekly buckets the given allocations into `weeks` contiguous 7-day
// spans anchored at windowStart and produces the sparse per-user-per-week
// utilization view for the project. An allocation contributes to every bucket
// its inclusive date range overlaps. plannedHours = percent/100 × hoursPerWeek;
// actual hours come from time tracking, which is not wired in, so actuals stay
// zero and variance is actual minus planned. Totals are the float sums of the
// reported entry values, so summing a summary's entries reproduces its totals
// exactly.
func AggregateWeekly(project *domain.Project, allocs []domain.Allocation, windowStart, windowEnd time.Time, weeks int, hoursPerWeek float64, userNames map[string]string) *domain.CapacitySummary {
	if hoursPerWeek <= 0 {
		hoursPerWeek = DefaultHoursPerWeek
	}
	hoursFactor := decimal.NewFromFloat(hoursPerWeek).Div(fullCapacity)

	summary := &domain.CapacitySummary{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Entries:     []domain.UserWeekCapacity{},
	}

	var totalHours, totalPercent float64

	for w := 0; w < weeks; w++ {
		weekStart := windowStart.AddDate(0, 0, w*7)
		weekEnd := weekStart.AddDate(0, 0, 6)

		perUser := map[string]decimal.Decimal{}
		for i := range allocs {
			a := allocs[i]
			if a.Deleted() || !a.Overlaps(weekStart, weekEnd) {
				continue
			}
			perUser[a.UserID] = perUser[a.UserID].Add(decimal.NewFromFloat(a.Percent))
		}

		userIDs := make([]string, 0, len(perUser))
		for id := range perUser {
			userIDs = append(userIDs, id)
		}
		sort.Strings(userIDs)

		for _, userID := range userIDs {
			percent := perUser[userID]
			entryHours := percent.Mul(hoursFactor).InexactFloat64()
			entryPercent := percent.InexactFloat64()

			summary.Entries = append(summary.Entries, domain.UserWeekCapacity{
				UserID:         userID,
				UserName:       userNames[userID],
				WeekStart:      weekStart,
				WeekEnd:        weekEnd,
				PlannedHours:   entryHours,
				PlannedPercent: entryPercent,
				VarianceHours:  -entryHours,
			})

			totalHours += entryHours
			totalPercent += entryPercent
		}
	}

	summary.Totals = domain.CapacityTotals{
		PlannedHours:   totalHours,
		PlannedPercent: totalPercent,
		VarianceHours:  -totalHours,
	}
	return summary
}
