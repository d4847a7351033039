package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

var fullCapacity = decimal.NewFromInt(100)

// ConflictCandidate is the allocation under consideration for a conflict
// check: a brand new record, or an update's merged values. Self-exclusion on
// update happens at fetch time, before the candidate reaches the detector.
type ConflictCandidate struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Percent   float64
}

// DetectConflicts decides whether committing the candidate would push the
// user's total concurrent allocation above 100% anywhere inside the
// candidate's date range. It is a pure function over the fetched records:
// soft-deleted and non-overlapping entries are ignored, percents are summed
// with decimal arithmetic so fractional inputs compare exactly, and a single
// report tagged exceeds_100_percent is returned when the total breaks the
// limit. An empty result means the mutation is allowed.
//
// Each conflicting entry reports the candidate's full window as its overlap
// window rather than the per-record intersection; callers relying on the
// report only need to know which records contribute and by how much.
func DetectConflicts(existing []domain.Allocation, cand ConflictCandidate, projectNames map[string]string) []domain.ConflictReport {
	total := decimal.NewFromFloat(cand.Percent)
	overlapping := make([]domain.Allocation, 0, len(existing))
	for i := range existing {
		a := existing[i]
		if a.Deleted() || !a.Overlaps(cand.StartDate, cand.EndDate) {
			continue
		}
		overlapping = append(overlapping, a)
		total = total.Add(decimal.NewFromFloat(a.Percent))
	}

	if !total.GreaterThan(fullCapacity) {
		return nil
	}

	running := decimal.NewFromFloat(cand.Percent)
	conflicting := make([]domain.ConflictingAllocation, 0, len(overlapping))
	for _, a := range overlapping {
		running = running.Add(decimal.NewFromFloat(a.Percent))
		conflicting = append(conflicting, domain.ConflictingAllocation{
			AllocationID:    a.ID,
			ProjectID:       a.ProjectID,
			ProjectName:     projectNames[a.ProjectID],
			Role:            a.Role,
			Percent:         a.Percent,
			StartDate:       a.StartDate,
			EndDate:         a.EndDate,
			OverlapStart:    cand.StartDate,
			OverlapEnd:      cand.EndDate,
			TotalAllocation: running.InexactFloat64(),
		})
	}

	return []domain.ConflictReport{{
		UserID:                 cand.UserID,
		ConflictType:           domain.ConflictExceeds100Percent,
		TotalAllocation:        total.InexactFloat64(),
		RequestedAllocation:    cand.Percent,
		ConflictingAllocations: conflicting,
	}}
}
