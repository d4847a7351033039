package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/ports"
	"github.com/pivotalflow/platform-api/internal/metrics"
)

const (
	defaultCapacityWeeks = 8
	maxCapacityWeeks     = 52

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// AllocationService is the allocation engine façade. Every operation runs the
// same pipeline: permission check, read, decide, write, audit. The engine is
// stateless per invocation; the only cross-request coordination is the
// per-user lock that keeps conflict check and write atomic.
type AllocationService struct {
	repo     ports.AllocationRepository
	projects ports.ProjectRepository
	users    ports.UserDirectory
	perms    ports.PermissionChecker
	audit    ports.AuditSink
	locks    ports.UserLocker
	log      zerolog.Logger

	now          func() time.Time
	hoursPerWeek float64
}

func NewAllocationService(
	repo ports.AllocationRepository,
	projects ports.ProjectRepository,
	users ports.UserDirectory,
	perms ports.PermissionChecker,
	audit ports.AuditSink,
	locks ports.UserLocker,
	log zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		repo:         repo,
		projects:     projects,
		users:        users,
		perms:        perms,
		audit:        audit,
		locks:        locks,
		log:          log,
		now:          time.Now,
		hoursPerWeek: DefaultHoursPerWeek,
	}
}

// WithClock replaces the time source. Tests pass a fixed clock so capacity
// windows are deterministic.
func (s *AllocationService) WithClock(now func() time.Time) *AllocationService {
	s.now = now
	return s
}

// WithHoursPerWeek overrides the nominal work week used for planned hours.
func (s *AllocationService) WithHoursPerWeek(hours float64) *AllocationService {
	if hours > 0 {
		s.hoursPerWeek = hours
	}
	return s
}

func (s *AllocationService) checkPermission(ctx context.Context, actor ports.Actor, permission string) error {
	decision, err := s.perms.HasPermission(ctx, actor.OrganizationID, actor.UserID, permission)
	if err != nil {
		return fmt.Errorf("permission check: %w", err)
	}
	if !decision.Granted {
		return &domain.PermissionDeniedError{
			UserID:     actor.UserID,
			Permission: permission,
			Reason:     decision.Reason,
		}
	}
	return nil
}

// Create inserts a new allocation after verifying it would not push the user
// past 100% concurrent commitment anywhere in its date range.
func (s *AllocationService) Create(ctx context.Context, actor ports.Actor, input ports.CreateAllocationInput) (*domain.Allocation, error) {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsCreate); err != nil {
		return nil, err
	}

	role := domain.AllocationRole(input.Role)
	start := domain.DateOnly(input.StartDate)
	end := domain.DateOnly(input.EndDate)
	if err := validateAllocationFields(input.ProjectID, input.UserID, role, input.Percent, start, end); err != nil {
		return nil, err
	}

	release, err := s.locks.Lock(ctx, actor.OrganizationID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}
	defer release()

	reports, err := s.runConflictCheck(ctx, actor.OrganizationID, ConflictCandidate{
		UserID:    input.UserID,
		StartDate: start,
		EndDate:   end,
		Percent:   input.Percent,
	}, "", "create")
	if err != nil {
		return nil, err
	}
	if len(reports) > 0 {
		return nil, &domain.ConflictError{Reports: reports}
	}

	now := s.now().UTC()
	alloc := &domain.Allocation{
		ID:             uuid.NewString(),
		OrganizationID: actor.OrganizationID,
		ProjectID:      input.ProjectID,
		UserID:         input.UserID,
		Role:           role,
		Percent:        input.Percent,
		StartDate:      start,
		EndDate:        end,
		Billable:       input.Billable,
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, alloc); err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to insert allocation")
		return nil, err
	}

	metrics.AllocationMutationsTotal.WithLabelValues("create").Inc()
	s.logAudit(ctx, actor, domain.AuditAllocationCreate, alloc.ID, nil, alloc)
	s.log.Info().
		Str("allocation_id", alloc.ID).
		Str("user_id", alloc.UserID).
		Str("project_id", alloc.ProjectID).
		Float64("percent", alloc.Percent).
		Msg("allocation created")

	return alloc, nil
}

// Get returns a single non-deleted allocation by id.
func (s *AllocationService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.Allocation, error) {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsRead); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, actor.OrganizationID, id)
}

// Update applies a partial patch. Every update runs under the user lock with
// the record re-read inside it: the write persists the full merged record, so
// even a metadata-only patch must merge against the current row, not a
// snapshot taken before the lock. When the patch touches dates or percent the
// conflict check re-runs against the merged record, excluding the record
// itself from the overlap set.
func (s *AllocationService) Update(ctx context.Context, actor ports.Actor, id string, patch ports.UpdateAllocationInput) (*domain.Allocation, error) {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsUpdate); err != nil {
		return nil, err
	}

	// First read only identifies the owning user; an allocation never moves
	// between users, so the lock key is stable.
	existing, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}

	release, err := s.locks.Lock(ctx, actor.OrganizationID, existing.UserID)
	if err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}
	defer release()

	existing, err = s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	old := *existing

	merged := *existing
	if patch.Role != nil {
		merged.Role = domain.AllocationRole(*patch.Role)
	}
	if patch.Percent != nil {
		merged.Percent = *patch.Percent
	}
	if patch.StartDate != nil {
		merged.StartDate = domain.DateOnly(*patch.StartDate)
	}
	if patch.EndDate != nil {
		merged.EndDate = domain.DateOnly(*patch.EndDate)
	}
	if patch.Billable != nil {
		merged.Billable = *patch.Billable
	}
	if patch.Notes != nil {
		merged.Notes = patch.Notes
	}
	if err := validateAllocationFields(merged.ProjectID, merged.UserID, merged.Role, merged.Percent, merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}

	needsCheck := patch.StartDate != nil || patch.EndDate != nil || patch.Percent != nil
	if needsCheck {
		reports, err := s.runConflictCheck(ctx, actor.OrganizationID, ConflictCandidate{
			UserID:    merged.UserID,
			StartDate: merged.StartDate,
			EndDate:   merged.EndDate,
			Percent:   merged.Percent,
		}, id, "update")
		if err != nil {
			return nil, err
		}
		if len(reports) > 0 {
			return nil, &domain.ConflictError{Reports: reports}
		}
	}

	merged.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, &merged); err != nil {
		s.log.Error().Err(err).Str("allocation_id", id).Msg("failed to update allocation")
		return nil, err
	}

	metrics.AllocationMutationsTotal.WithLabelValues("update").Inc()
	s.logAudit(ctx, actor, domain.AuditAllocationUpdate, id, &old, &merged)
	s.log.Info().Str("allocation_id", id).Msg("allocation updated")

	return &merged, nil
}

// Delete soft-deletes an allocation. The row is retained for audit history
// and excluded from all further reads, conflict checks, and aggregation.
func (s *AllocationService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsDelete); err != nil {
		return err
	}

	existing, err := s.repo.FindByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, actor.OrganizationID, id, s.now().UTC()); err != nil {
		s.log.Error().Err(err).Str("allocation_id", id).Msg("failed to soft-delete allocation")
		return err
	}

	metrics.AllocationMutationsTotal.WithLabelValues("delete").Inc()
	s.logAudit(ctx, actor, domain.AuditAllocationDelete, id, existing, nil)
	s.log.Info().Str("allocation_id", id).Msg("allocation deleted")

	return nil
}

// List returns a page of allocations matching the filters plus the total
// count for pagination.
func (s *AllocationService) List(ctx context.Context, actor ports.Actor, input ports.ListAllocationsInput) (*ports.ListAllocationsResult, error) {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsRead); err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListAllocationsFilter{
		OrganizationID: actor.OrganizationID,
		ProjectID:      input.ProjectID,
		UserID:         input.UserID,
		Role:           input.Role,
		Billable:       input.Billable,
		DateFrom:       input.DateFrom,
		DateTo:         input.DateTo,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListAllocationsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ProjectCapacity aggregates planned utilization for the project over the
// trailing `weeks`-week window ending today.
func (s *AllocationService) ProjectCapacity(ctx context.Context, actor ports.Actor, projectID string, weeks int) (*domain.CapacitySummary, error) {
	if err := s.checkPermission(ctx, actor, ports.PermAllocationsViewCapacity); err != nil {
		return nil, err
	}

	if weeks == 0 {
		weeks = defaultCapacityWeeks
	}
	if weeks < 1 || weeks > maxCapacityWeeks {
		return nil, &domain.ValidationError{Field: "weeks", Reason: fmt.Sprintf("must be between 1 and %d", maxCapacityWeeks)}
	}

	project, err := s.projects.FindByID(ctx, actor.OrganizationID, projectID)
	if err != nil {
		return nil, err
	}

	// The window spans weeks*7+1 inclusive days but the buckets cover only the
	// first weeks*7: an allocation touching nothing before windowEnd itself is
	// fetched yet lands in no bucket.
	windowEnd := domain.DateOnly(s.now())
	windowStart := windowEnd.AddDate(0, 0, -weeks*7)

	allocs, err := s.repo.FindByProjectWindow(ctx, actor.OrganizationID, projectID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	userNames := s.resolveUserNames(ctx, actor.OrganizationID, allocs)
	summary := AggregateWeekly(project, allocs, windowStart, windowEnd, weeks, s.hoursPerWeek, userNames)

	metrics.CapacityQueriesTotal.Inc()
	return summary, nil
}

// runConflictCheck fetches the user's overlapping allocations and runs the
// detector, recording check duration and outcome. Reports come back annotated
// with project names when the lookup succeeds; name resolution is best-effort.
func (s *AllocationService) runConflictCheck(ctx context.Context, orgID string, cand ConflictCandidate, excludeID, operation string) ([]domain.ConflictReport, error) {
	timer := time.Now()

	overlapping, err := s.repo.FindOverlapping(ctx, orgID, cand.UserID, cand.StartDate, cand.EndDate, excludeID)
	if err != nil {
		return nil, fmt.Errorf("fetch overlapping allocations: %w", err)
	}

	reports := DetectConflicts(overlapping, cand, s.projectNames(ctx, orgID, overlapping))

	metrics.ConflictCheckDuration.WithLabelValues(operation).Observe(time.Since(timer).Seconds())
	result := "clear"
	if len(reports) > 0 {
		result = "conflict"
	}
	metrics.ConflictChecksTotal.WithLabelValues(operation, result).Inc()

	return reports, nil
}

func (s *AllocationService) projectNames(ctx context.Context, orgID string, allocs []domain.Allocation) map[string]string {
	if len(allocs) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(allocs))
	for _, a := range allocs {
		if _, ok := seen[a.ProjectID]; ok {
			continue
		}
		seen[a.ProjectID] = struct{}{}
		ids = append(ids, a.ProjectID)
	}

	names, err := s.projects.NamesByIDs(ctx, orgID, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to resolve project names for conflict report")
		return nil
	}
	return names
}

func (s *AllocationService) resolveUserNames(ctx context.Context, orgID string, allocs []domain.Allocation) map[string]string {
	if len(allocs) == 0 {
		return nil
	}
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(allocs))
	for _, a := range allocs {
		if _, ok := seen[a.UserID]; ok {
			continue
		}
		seen[a.UserID] = struct{}{}
		ids = append(ids, a.UserID)
	}

	names, err := s.users.NamesByIDs(ctx, orgID, ids)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to resolve user names for capacity summary")
		return nil
	}
	return names
}

// logAudit records a mutation in the audit trail. Failures are non-fatal: a
// transient audit-store outage must never block a legitimate mutation, so the
// error is logged and counted instead of returned.
func (s *AllocationService) logAudit(ctx context.Context, actor ports.Actor, action, entityID string, oldValues, newValues *domain.Allocation) {
	event := &domain.AuditEvent{
		Action:         action,
		EntityType:     domain.EntityResourceAllocation,
		EntityID:       entityID,
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		OldValues:      oldValues,
		NewValues:      newValues,
		RecordedAt:     s.now().UTC(),
	}
	if err := s.audit.LogEvent(ctx, event); err != nil {
		metrics.AuditLogFailuresTotal.Inc()
		s.log.Warn().Err(err).
			Str("action", action).
			Str("entity_id", entityID).
			Msg("failed to record audit event")
	}
}

func validateAllocationFields(projectID, userID string, role domain.AllocationRole, percent float64, start, end time.Time) error {
	if projectID == "" {
		return &domain.ValidationError{Field: "project_id", Reason: "required"}
	}
	if userID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	if !role.Valid() {
		return &domain.ValidationError{Field: "role", Reason: "unknown role " + string(role)}
	}
	if percent <= 0 || percent > 100 {
		return &domain.ValidationError{Field: "allocation_percent", Reason: "must be greater than 0 and at most 100"}
	}
	if start.After(end) {
		return &domain.ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}
	return nil
}
