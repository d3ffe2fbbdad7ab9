package assignment

import (
	"context"

	"github.com/xraph/azguard/id"
)

// Store defines persistence operations for role assignments.
type Store interface {
	// CreateAssignment persists a new assignment. Adding a SID that is
	// already a member of the role is a no-op.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, asgID id.AssignmentID) (*Assignment, error)

	// DeleteAssignment removes an assignment by ID.
	DeleteAssignment(ctx context.Context, asgID id.AssignmentID) error

	// DeleteMember removes the membership of sid in a role and reports
	// whether one existed.
	DeleteMember(ctx context.Context, roleID id.RoleID, sid string) (bool, error)

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListRoleMembers returns all assignments of a role.
	ListRoleMembers(ctx context.Context, roleID id.RoleID) ([]*Assignment, error)

	// ListRolesForSIDs returns the IDs of roles in the application that have
	// any of the given SIDs as a member.
	ListRolesForSIDs(ctx context.Context, appID id.ApplicationID, sids []string) ([]id.RoleID, error)

	// DeleteAssignmentsByRole removes all assignments of a role.
	DeleteAssignmentsByRole(ctx context.Context, roleID id.RoleID) error

	// DeleteAssignmentsByApp removes all assignments of an application.
	DeleteAssignmentsByApp(ctx context.Context, appID id.ApplicationID) error
}
