package service

import (
	"context"
	"errors"

	"github.com/pivotalflow/platform-api/internal/core/domain"
	"github.com/pivotalflow/platform-api/internal/core/ports"
)

// rolePermissions maps platform roles to their allocation grants.
// Admins hold every permission; managers manage allocations for their
// organization; members can only read and inspect capacity.
var rolePermissions = map[string]map[string]struct{}{
	domain.RoleAdmin: {
		ports.PermAllocationsCreate:       {},
		ports.PermAllocationsRead:         {},
		ports.PermAllocationsUpdate:       {},
		ports.PermAllocationsDelete:       {},
		ports.PermAllocationsViewCapacity: {},
	},
	domain.RoleManager: {
		ports.PermAllocationsCreate:       {},
		ports.PermAllocationsRead:         {},
		ports.PermAllocationsUpdate:       {},
		ports.PermAllocationsDelete:       {},
		ports.PermAllocationsViewCapacity: {},
	},
	domain.RoleMember: {
		ports.PermAllocationsRead:         {},
		ports.PermAllocationsViewCapacity: {},
	},
}

// PermissionService answers capability checks from the acting user's stored
// role. Users outside the requesting organization are treated as unknown, so
// cross-tenant actors are denied rather than revealed.
type PermissionService struct {
	users ports.AuthRepository
}

func NewPermissionService(users ports.AuthRepository) *PermissionService {
	return &PermissionService{users: users}
}

func (s *PermissionService) HasPermission(ctx context.Context, orgID, userID, permission string) (ports.PermissionDecision, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.PermissionDecision{Granted: false, Reason: "unknown user"}, nil
		}
		return ports.PermissionDecision{}, err
	}
	if user.OrganizationID != orgID {
		return ports.PermissionDecision{Granted: false, Reason: "unknown user"}, nil
	}

	grants, ok := rolePermissions[user.Role]
	if !ok {
		return ports.PermissionDecision{Granted: false, Reason: "unknown role"}, nil
	}
	if _, ok := grants[permission]; !ok {
		return ports.PermissionDecision{Granted: false, Reason: "role " + user.Role + " lacks " + permission}, nil
	}
	return ports.PermissionDecision{Granted: true}, nil
}
