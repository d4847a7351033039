package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubAllocationRepo struct {
	allocs   map[string]*domain.Allocation
	fetchErr error
	writeErr error
	reads    int
}

func newStubAllocationRepo() *stubAllocationRepo {
	return &stubAllocationRepo{allocs: make(map[string]*domain.Allocation)}
}

func (r *stubAllocationRepo) live(orgID string) []domain.Allocation {
	ids := make([]string, 0, len(r.allocs))
	for id := range r.allocs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.Allocation
	for _, id := range ids {
		a := r.allocs[id]
		if a.OrganizationID != orgID || a.Deleted() {
			continue
		}
		out = append(out, *a)
	}
	return out
}

func (r *stubAllocationRepo) FindOverlapping(_ context.Context, orgID, userID string, start, end time.Time, excludeID string) ([]domain.Allocation, error) {
	r.reads++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []domain.Allocation
	for _, a := range r.live(orgID) {
		if a.UserID != userID || a.ID == excludeID || !a.Overlaps(start, end) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAllocationRepo) FindByProjectWindow(_ context.Context, orgID, projectID string, start, end time.Time) ([]domain.Allocation, error) {
	r.reads++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	var out []domain.Allocation
	for _, a := range r.live(orgID) {
		if a.ProjectID != projectID || !a.Overlaps(start, end) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAllocationRepo) FindByID(_ context.Context, orgID, id string) (*domain.Allocation, error) {
	r.reads++
	a, ok := r.allocs[id]
	if !ok || a.OrganizationID != orgID || a.Deleted() {
		return nil, domain.ErrAllocationNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAllocationRepo) Insert(_ context.Context, a *domain.Allocation) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	clone := *a
	r.allocs[a.ID] = &clone
	return nil
}

func (r *stubAllocationRepo) Update(_ context.Context, a *domain.Allocation) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	if _, ok := r.allocs[a.ID]; !ok {
		return domain.ErrAllocationNotFound
	}
	clone := *a
	r.allocs[a.ID] = &clone
	return nil
}

func (r *stubAllocationRepo) SoftDelete(_ context.Context, orgID, id string, deletedAt time.Time) error {
	a, ok := r.allocs[id]
	if !ok || a.OrganizationID != orgID {
		return domain.ErrAllocationNotFound
	}
	a.DeletedAt = &deletedAt
	return nil
}

func (r *stubAllocationRepo) List(_ context.Context, f ports.ListAllocationsFilter) ([]domain.Allocation, int64, error) {
	var matched []domain.Allocation
	for _, a := range r.live(f.OrganizationID) {
		if f.ProjectID != "" && a.ProjectID != f.ProjectID {
			continue
		}
		if f.UserID != "" && a.UserID != f.UserID {
			continue
		}
		if f.Role != "" && string(a.Role) != f.Role {
			continue
		}
		if f.Billable != nil && a.Billable != *f.Billable {
			continue
		}
		if !f.DateFrom.IsZero() && a.EndDate.Before(f.DateFrom) {
			continue
		}
		if !f.DateTo.IsZero() && a.StartDate.After(f.DateTo) {
			continue
		}
		matched = append(matched, a)
	}

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

type stubProjectRepo struct {
	projects map[string]*domain.Project
}

func (r *stubProjectRepo) FindByID(_ context.Context, orgID, id string) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok || p.OrganizationID != orgID {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) NamesByIDs(_ context.Context, orgID string, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if p, ok := r.projects[id]; ok && p.OrganizationID == orgID {
			names[id] = p.Name
		}
	}
	return names, nil
}

type stubUserDirectory struct {
	names map[string]string
}

func (d *stubUserDirectory) NamesByIDs(_ context.Context, _ string, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if n, ok := d.names[id]; ok {
			names[id] = n
		}
	}
	return names, nil
}

type stubPermissions struct {
	denied  map[string]bool
	checked []string
	err     error
}

func (p *stubPermissions) HasPermission(_ context.Context, _, _ string, permission string) (ports.PermissionDecision, error) {
	p.checked = append(p.checked, permission)
	if p.err != nil {
		return ports.PermissionDecision{}, p.err
	}
	if p.denied[permission] {
		return ports.PermissionDecision{Granted: false, Reason: "denied by test"}, nil
	}
	return ports.PermissionDecision{Granted: true}, nil
}

type stubAudit struct {
	events []*domain.AuditEvent
	err    error
}

func (a *stubAudit) LogEvent(_ context.Context, event *domain.AuditEvent) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, event)
	return nil
}

type stubLocker struct {
	acquired int
	released int

	// onAcquire, when set, runs as soon as the lock is granted. Tests use it
	// to commit a concurrent mutation between a caller's pre-lock read and its
	// locked re-read.
	onAcquire func()
}

func (l *stubLocker) Lock(_ context.Context, _, _ string) (func(), error) {
	l.acquired++
	if l.onAcquire != nil {
		l.onAcquire()
	}
	return func() { l.released++ }, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type engineFixture struct {
	svc    *AllocationService
	repo   *stubAllocationRepo
	perms  *stubPermissions
	audit  *stubAudit
	locker *stubLocker
}

var fixedNow = time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

func newEngine() *engineFixture {
	repo := newStubAllocationRepo()
	perms := &stubPermissions{denied: map[string]bool{}}
	audit := &stubAudit{}
	locker := &stubLocker{}
	projects := &stubProjectRepo{projects: map[string]*domain.Project{
		"p1": {ID: "p1", OrganizationID: "org_1", Name: "Apollo"},
		"p2": {ID: "p2", OrganizationID: "org_1", Name: "Borealis"},
	}}
	users := &stubUserDirectory{names: map[string]string{"u1": "Ana", "u2": "Ben"}}

	svc := NewAllocationService(repo, projects, users, perms, audit, locker, zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return &engineFixture{svc: svc, repo: repo, perms: perms, audit: audit, locker: locker}
}

var actor = ports.Actor{UserID: "manager_1", OrganizationID: "org_1"}

func createInput(userID string, percent float64, start, end time.Time) ports.CreateAllocationInput {
	return ports.CreateAllocationInput{
		ProjectID: "p1",
		UserID:    userID,
		Role:      string(domain.RoleDeveloper),
		Percent:   percent,
		StartDate: start,
		EndDate:   end,
		Billable:  true,
	}
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestCreate_Success(t *testing.T) {
	f := newEngine()

	created, err := f.svc.Create(context.Background(), actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}
	if created.OrganizationID != "org_1" {
		t.Errorf("organization = %q", created.OrganizationID)
	}
	if f.perms.checked[0] != ports.PermAllocationsCreate {
		t.Errorf("checked permission %q", f.perms.checked[0])
	}
	if f.locker.acquired != 1 || f.locker.released != 1 {
		t.Errorf("lock acquired/released = %d/%d, want 1/1", f.locker.acquired, f.locker.released)
	}

	if len(f.audit.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(f.audit.events))
	}
	ev := f.audit.events[0]
	if ev.Action != domain.AuditAllocationCreate || ev.EntityType != domain.EntityResourceAllocation {
		t.Errorf("audit event = %+v", ev)
	}
	if ev.OldValues != nil || ev.NewValues == nil {
		t.Error("create audit must have old=nil, new=created record")
	}
}

func TestCreate_ConflictOverlappingAllocations(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 15), date(2025, 2, 15)))
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(ce.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(ce.Reports))
	}
	r := ce.Reports[0]
	if r.TotalAllocation != 110 {
		t.Errorf("total = %v, want 110", r.TotalAllocation)
	}
	if len(r.ConflictingAllocations) != 1 {
		t.Fatalf("expected 1 conflicting allocation, got %d", len(r.ConflictingAllocations))
	}
	if r.ConflictingAllocations[0].ProjectName != "Apollo" {
		t.Errorf("project name = %q, want Apollo", r.ConflictingAllocations[0].ProjectName)
	}

	// The rejected allocation must not be persisted.
	if len(f.repo.allocs) != 1 {
		t.Errorf("expected 1 stored allocation, got %d", len(f.repo.allocs))
	}
}

func TestCreate_ExactlyHundredSucceeds(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, actor, createInput("u1", 40, date(2025, 1, 15), date(2025, 2, 15))); err != nil {
		t.Fatalf("60+40=100 must be allowed: %v", err)
	}
	if len(f.repo.allocs) != 2 {
		t.Errorf("expected 2 stored allocations, got %d", len(f.repo.allocs))
	}
}

func TestCreate_AdjacentFullTimeAllocations(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 100, date(2025, 1, 1), date(2025, 1, 5))); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, actor, createInput("u1", 100, date(2025, 1, 6), date(2025, 1, 10))); err != nil {
		t.Fatalf("adjacent ranges must not conflict: %v", err)
	}
}

func TestCreate_PermissionDenied(t *testing.T) {
	f := newEngine()
	f.perms.denied[ports.PermAllocationsCreate] = true

	_, err := f.svc.Create(context.Background(), actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	var pd *domain.PermissionDeniedError
	if !errors.As(err, &pd) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
	if pd.Permission != ports.PermAllocationsCreate {
		t.Errorf("permission = %q", pd.Permission)
	}
	if f.repo.reads != 0 {
		t.Error("permission failure must short-circuit before any store access")
	}
}

func TestCreate_ValidationBeforeStoreAccess(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.CreateAllocationInput
	}{
		{"zero percent", createInput("u1", 0, date(2025, 1, 1), date(2025, 1, 31))},
		{"negative percent", createInput("u1", -10, date(2025, 1, 1), date(2025, 1, 31))},
		{"over 100 percent", createInput("u1", 101, date(2025, 1, 1), date(2025, 1, 31))},
		{"end before start", createInput("u1", 50, date(2025, 1, 31), date(2025, 1, 1))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, actor, tc.input)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}

	bad := createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31))
	bad.Role = "janitor"
	if _, err := f.svc.Create(ctx, actor, bad); err == nil {
		t.Fatal("unknown role must be rejected")
	}

	if f.repo.reads != 0 {
		t.Errorf("validation failures must not touch the store, saw %d reads", f.repo.reads)
	}
}

func TestCreate_SingleDayAllocation(t *testing.T) {
	f := newEngine()

	if _, err := f.svc.Create(context.Background(), actor, createInput("u1", 100, date(2025, 1, 1), date(2025, 1, 1))); err != nil {
		t.Fatalf("equal start and end date is a valid single-day allocation: %v", err)
	}
}

func TestCreate_AuditFailureDoesNotBlock(t *testing.T) {
	f := newEngine()
	f.audit.err = errors.New("audit store down")

	created, err := f.svc.Create(context.Background(), actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("audit failure must not block the mutation: %v", err)
	}
	if _, ok := f.repo.allocs[created.ID]; !ok {
		t.Error("allocation must be persisted despite audit failure")
	}
}

func TestCreate_StoreErrorPropagates(t *testing.T) {
	f := newEngine()
	f.repo.fetchErr = errors.New("store unavailable")

	if _, err := f.svc.Create(context.Background(), actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31))); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func TestUpdate_SelfExclusion(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Raising the record's own percent must not conflict with itself.
	newPercent := 70.0
	updated, err := f.svc.Update(ctx, actor, created.ID, ports.UpdateAllocationInput{Percent: &newPercent})
	if err != nil {
		t.Fatalf("self-excluded update failed: %v", err)
	}
	if updated.Percent != 70 {
		t.Errorf("percent = %v, want 70", updated.Percent)
	}
	if f.locker.acquired != 2 || f.locker.released != 2 {
		t.Errorf("percent update must run under the user lock")
	}
}

func TestUpdate_ConflictWithOtherAllocation(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, actor, createInput("u1", 40, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	newPercent := 70.0
	_, err = f.svc.Update(ctx, actor, first.ID, ports.UpdateAllocationInput{Percent: &newPercent})
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if ce.Reports[0].TotalAllocation != 110 {
		t.Errorf("total = %v, want 110", ce.Reports[0].TotalAllocation)
	}
}

func TestUpdate_MetadataOnlySkipsConflictCheckButLocks(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	locksAfterCreate := f.locker.acquired

	// FindOverlapping fails from here on; a metadata-only patch never runs the
	// conflict check, so the update must still succeed.
	f.repo.fetchErr = errors.New("overlap query must not run")

	billable := false
	role := string(domain.RoleTester)
	updated, err := f.svc.Update(ctx, actor, created.ID, ports.UpdateAllocationInput{
		Role:     &role,
		Billable: &billable,
		Notes:    map[string]string{"reason": "handover"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Role != domain.RoleTester || updated.Billable {
		t.Errorf("patch not applied: %+v", updated)
	}
	if f.locker.acquired != locksAfterCreate+1 || f.locker.released != f.locker.acquired {
		t.Errorf("every update must run under the user lock, acquired/released = %d/%d",
			f.locker.acquired, f.locker.released)
	}
}

func TestUpdate_MetadataOnlyMergesAgainstLockedRead(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// While the role-only update waits for the lock, a concurrent update moves
	// the allocation to February. The update writes the full merged record, so
	// it must merge against the moved row, not its pre-lock snapshot.
	f.locker.onAcquire = func() {
		moved := *f.repo.allocs[created.ID]
		moved.StartDate = date(2025, 2, 1)
		moved.EndDate = date(2025, 2, 28)
		f.repo.allocs[created.ID] = &moved
		f.locker.onAcquire = nil
	}

	role := string(domain.RoleTester)
	updated, err := f.svc.Update(ctx, actor, created.ID, ports.UpdateAllocationInput{Role: &role})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Role != domain.RoleTester {
		t.Errorf("role = %q, want tester", updated.Role)
	}
	if !updated.StartDate.Equal(date(2025, 2, 1)) || !updated.EndDate.Equal(date(2025, 2, 28)) {
		t.Errorf("stale window written back: [%v, %v], want February", updated.StartDate, updated.EndDate)
	}

	// The January window the concurrent update freed must stay free: a new
	// 60% January allocation may coexist with the moved 50% February one.
	if _, err := f.svc.Create(ctx, actor, createInput("u1", 60, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("freed window must accept new allocations: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	f := newEngine()

	_, err := f.svc.Update(context.Background(), actor, "missing", ports.UpdateAllocationInput{})
	if !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("expected ErrAllocationNotFound, got %v", err)
	}
}

func TestUpdate_WrongOrganizationIsNotFound(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	foreign := ports.Actor{UserID: "manager_2", OrganizationID: "org_2"}
	percent := 60.0
	_, err = f.svc.Update(ctx, foreign, created.ID, ports.UpdateAllocationInput{Percent: &percent})
	if !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("cross-tenant update must look like not-found, got %v", err)
	}
}

func TestUpdate_AuditCarriesOldAndNew(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	percent := 75.0
	if _, err := f.svc.Update(ctx, actor, created.ID, ports.UpdateAllocationInput{Percent: &percent}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	ev := f.audit.events[len(f.audit.events)-1]
	if ev.Action != domain.AuditAllocationUpdate {
		t.Errorf("action = %q", ev.Action)
	}
	if ev.OldValues == nil || ev.OldValues.Percent != 50 {
		t.Errorf("old snapshot = %+v", ev.OldValues)
	}
	if ev.NewValues == nil || ev.NewValues.Percent != 75 {
		t.Errorf("new snapshot = %+v", ev.NewValues)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDelete_SoftDeleteFreesCapacity(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, actor, createInput("u1", 90, date(2025, 1, 1), date(2025, 1, 31)))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := f.svc.Delete(ctx, actor, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Row retained for audit history, but excluded from conflict checks.
	if stored := f.repo.allocs[created.ID]; stored == nil || !stored.Deleted() {
		t.Fatal("delete must soft-delete, not remove the row")
	}

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 90, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("soft-deleted allocation must not block new ones: %v", err)
	}

	ev := f.audit.events[1]
	if ev.Action != domain.AuditAllocationDelete || ev.NewValues != nil || ev.OldValues == nil {
		t.Errorf("delete audit event = %+v", ev)
	}
}

func TestDelete_NotFound(t *testing.T) {
	f := newEngine()

	if err := f.svc.Delete(context.Background(), actor, "missing"); !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("expected ErrAllocationNotFound, got %v", err)
	}
}

func TestDelete_AlreadyDeletedIsNotFound(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31)))
	if err := f.svc.Delete(ctx, actor, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := f.svc.Delete(ctx, actor, created.ID); !errors.Is(err, domain.ErrAllocationNotFound) {
		t.Fatalf("second delete must be not-found, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// List
// ---------------------------------------------------------------------------

func TestList_FiltersAndPagination(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	for i, day := range []int{1, 3, 5} {
		in := createInput("u1", 10, date(2025, 1, day), date(2025, 1, day))
		if i == 2 {
			in.ProjectID = "p2"
		}
		if _, err := f.svc.Create(ctx, actor, in); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	res, err := f.svc.List(ctx, actor, ports.ListAllocationsInput{ProjectID: "p1", Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("total = %d, want 2", res.Total)
	}
	if len(res.Items) != 1 {
		t.Errorf("page size = %d, want 1", len(res.Items))
	}
	if res.TotalPages != 2 {
		t.Errorf("total pages = %d, want 2", res.TotalPages)
	}
}

func TestList_IsIdempotent(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 50, date(2025, 1, 1), date(2025, 1, 31))); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := f.svc.List(ctx, actor, ports.ListAllocationsInput{})
	if err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	second, err := f.svc.List(ctx, actor, ports.ListAllocationsInput{})
	if err != nil {
		t.Fatalf("second list failed: %v", err)
	}
	if first.Total != second.Total || len(first.Items) != len(second.Items) {
		t.Error("identical list calls must return identical results")
	}
	if len(f.repo.allocs) != 1 {
		t.Error("list must not mutate the store")
	}
}

// ---------------------------------------------------------------------------
// ProjectCapacity
// ---------------------------------------------------------------------------

func TestProjectCapacity_WindowAnchoredToClock(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	windowEnd := domain.DateOnly(fixedNow)
	windowStart := windowEnd.AddDate(0, 0, -8*7)

	if _, err := f.svc.Create(ctx, actor, createInput("u1", 50, windowStart, windowStart.AddDate(0, 0, 13))); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sum, err := f.svc.ProjectCapacity(ctx, actor, "p1", 0)
	if err != nil {
		t.Fatalf("capacity failed: %v", err)
	}
	if !sum.WindowStart.Equal(windowStart) || !sum.WindowEnd.Equal(windowEnd) {
		t.Errorf("window = [%v, %v], want [%v, %v]", sum.WindowStart, sum.WindowEnd, windowStart, windowEnd)
	}
	if len(sum.Entries) != 2 {
		t.Fatalf("expected 2 weekly entries, got %d", len(sum.Entries))
	}
	if sum.Entries[0].UserName != "Ana" {
		t.Errorf("user name = %q, want Ana", sum.Entries[0].UserName)
	}
	if sum.Totals.PlannedHours != 40 {
		t.Errorf("total planned hours = %v, want 40", sum.Totals.PlannedHours)
	}
}

func TestProjectCapacity_WeeksBounds(t *testing.T) {
	f := newEngine()
	ctx := context.Background()

	for _, weeks := range []int{-1, 53} {
		_, err := f.svc.ProjectCapacity(ctx, actor, "p1", weeks)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("weeks=%d: expected ValidationError, got %v", weeks, err)
		}
	}
}

func TestProjectCapacity_ProjectNotFound(t *testing.T) {
	f := newEngine()

	if _, err := f.svc.ProjectCapacity(context.Background(), actor, "missing", 8); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectCapacity_PermissionDenied(t *testing.T) {
	f := newEngine()
	f.perms.denied[ports.PermAllocationsViewCapacity] = true

	_, err := f.svc.ProjectCapacity(context.Background(), actor, "p1", 8)
	var pd *domain.PermissionDeniedError
	if !errors.As(err, &pd) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
}
