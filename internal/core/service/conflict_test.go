package service

import (
	"testing"
	"time"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func alloc(id, userID, projectID string, percent float64, start, end time.Time) domain.Allocation {
	return domain.Allocation{
		ID:             id,
		OrganizationID: "org_1",
		ProjectID:      projectID,
		UserID:         userID,
		Role:           domain.RoleDeveloper,
		Percent:        percent,
		StartDate:      start,
		EndDate:        end,
	}
}

func TestDetectConflicts_Exceeds100(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 60, date(2025, 1, 1), date(2025, 1, 31)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 15),
		EndDate:   date(2025, 2, 15),
		Percent:   50,
	}

	reports := DetectConflicts(existing, cand, map[string]string{"p1": "Apollo"})
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.ConflictType != domain.ConflictExceeds100Percent {
		t.Errorf("conflict type = %q", r.ConflictType)
	}
	if r.TotalAllocation != 110 {
		t.Errorf("total = %v, want 110", r.TotalAllocation)
	}
	if r.RequestedAllocation != 50 {
		t.Errorf("requested = %v, want 50", r.RequestedAllocation)
	}
	if len(r.ConflictingAllocations) != 1 {
		t.Fatalf("expected 1 conflicting allocation, got %d", len(r.ConflictingAllocations))
	}
	ca := r.ConflictingAllocations[0]
	if ca.AllocationID != "a1" || ca.ProjectName != "Apollo" {
		t.Errorf("unexpected annotation: %+v", ca)
	}
	// The reported overlap window is the candidate's full window.
	if !ca.OverlapStart.Equal(cand.StartDate) || !ca.OverlapEnd.Equal(cand.EndDate) {
		t.Errorf("overlap window = [%v, %v], want candidate window", ca.OverlapStart, ca.OverlapEnd)
	}
}

func TestDetectConflicts_ExactlyHundredIsClear(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 60, date(2025, 1, 1), date(2025, 1, 31)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 15),
		EndDate:   date(2025, 2, 15),
		Percent:   40,
	}

	if reports := DetectConflicts(existing, cand, nil); len(reports) != 0 {
		t.Fatalf("60+40=100 must not conflict, got %+v", reports)
	}
}

func TestDetectConflicts_FractionalPercentsSumExactly(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 60.1, date(2025, 1, 1), date(2025, 1, 31)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 1),
		EndDate:   date(2025, 1, 31),
		Percent:   39.9,
	}
	// 60.1 + 39.9 is exactly 100 in decimal arithmetic; a float sum would
	// stray just above and flag a false conflict.
	if reports := DetectConflicts(existing, cand, nil); len(reports) != 0 {
		t.Fatalf("60.1+39.9=100 must not conflict, got total %v", reports[0].TotalAllocation)
	}

	cand.Percent = 39.95
	reports := DetectConflicts(existing, cand, nil)
	if len(reports) != 1 {
		t.Fatal("60.1+39.95=100.05 must conflict")
	}
	if reports[0].TotalAllocation != 100.05 {
		t.Errorf("total = %v, want 100.05", reports[0].TotalAllocation)
	}
}

func TestDetectConflicts_BoundaryDayCountsAsOverlap(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 60, date(2025, 1, 1), date(2025, 1, 10)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 10),
		EndDate:   date(2025, 1, 20),
		Percent:   50,
	}

	if reports := DetectConflicts(existing, cand, nil); len(reports) != 1 {
		t.Fatal("shared boundary day must count as overlap")
	}
}

func TestDetectConflicts_AdjacentRangesDoNotOverlap(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 100, date(2025, 1, 1), date(2025, 1, 5)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 6),
		EndDate:   date(2025, 1, 10),
		Percent:   100,
	}

	if reports := DetectConflicts(existing, cand, nil); len(reports) != 0 {
		t.Fatal("adjacent ranges share no day and must not conflict")
	}
}

func TestDetectConflicts_SoftDeletedExcluded(t *testing.T) {
	deleted := alloc("a1", "u1", "p1", 90, date(2025, 1, 1), date(2025, 1, 31))
	when := date(2025, 1, 2)
	deleted.DeletedAt = &when

	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 1, 1),
		EndDate:   date(2025, 1, 31),
		Percent:   90,
	}

	if reports := DetectConflicts([]domain.Allocation{deleted}, cand, nil); len(reports) != 0 {
		t.Fatal("soft-deleted allocations must not participate in conflict checks")
	}
}

func TestDetectConflicts_CumulativeTotalsAcrossMultiple(t *testing.T) {
	existing := []domain.Allocation{
		alloc("a1", "u1", "p1", 40, date(2025, 3, 1), date(2025, 3, 31)),
		alloc("a2", "u1", "p2", 30, date(2025, 3, 10), date(2025, 3, 20)),
	}
	cand := ConflictCandidate{
		UserID:    "u1",
		StartDate: date(2025, 3, 5),
		EndDate:   date(2025, 3, 15),
		Percent:   50,
	}

	reports := DetectConflicts(existing, cand, nil)
	if len(reports) != 1 {
		t.Fatal("expected a conflict report")
	}
	r := reports[0]
	if r.TotalAllocation != 120 {
		t.Errorf("total = %v, want 120", r.TotalAllocation)
	}
	if len(r.ConflictingAllocations) != 2 {
		t.Fatalf("expected 2 conflicting allocations, got %d", len(r.ConflictingAllocations))
	}
	if got := r.ConflictingAllocations[0].TotalAllocation; got != 90 {
		t.Errorf("first cumulative total = %v, want 90", got)
	}
	if got := r.ConflictingAllocations[1].TotalAllocation; got != 120 {
		t.Errorf("second cumulative total = %v, want 120", got)
	}
}

func TestOverlapSymmetry(t *testing.T) {
	cases := []struct {
		name         string
		aStart, aEnd time.Time
		bStart, bEnd time.Time
		wantOverlap  bool
	}{
		{"disjoint", date(2025, 1, 1), date(2025, 1, 5), date(2025, 1, 7), date(2025, 1, 9), false},
		{"adjacent", date(2025, 1, 1), date(2025, 1, 5), date(2025, 1, 6), date(2025, 1, 9), false},
		{"boundary", date(2025, 1, 1), date(2025, 1, 10), date(2025, 1, 10), date(2025, 1, 20), true},
		{"contained", date(2025, 1, 1), date(2025, 1, 31), date(2025, 1, 10), date(2025, 1, 12), true},
		{"single day", date(2025, 1, 5), date(2025, 1, 5), date(2025, 1, 5), date(2025, 1, 5), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := alloc("a", "u1", "p1", 10, tc.aStart, tc.aEnd)
			b := alloc("b", "u1", "p1", 10, tc.bStart, tc.bEnd)
			if got := a.Overlaps(tc.bStart, tc.bEnd); got != tc.wantOverlap {
				t.Errorf("a.Overlaps(b) = %v, want %v", got, tc.wantOverlap)
			}
			if got := b.Overlaps(tc.aStart, tc.aEnd); got != tc.wantOverlap {
				t.Errorf("b.Overlaps(a) = %v, want %v (symmetry)", got, tc.wantOverlap)
			}
		})
	}
}
