package role

import (
	"context"

	"github.com/xraph/azguard/id"
)

// Store defines persistence operations for roles.
type Store interface {
	// CreateRole persists a new role. Names are unique per application and scope.
	CreateRole(ctx context.Context, r *Role) error

	// GetRole retrieves a role by ID.
	GetRole(ctx context.Context, roleID id.RoleID) (*Role, error)

	// GetRoleByName retrieves a role by application, scope and name.
	GetRoleByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*Role, error)

	// UpdateRole persists changes to a role.
	UpdateRole(ctx context.Context, r *Role) error

	// DeleteRole removes a role by ID.
	DeleteRole(ctx context.Context, roleID id.RoleID) error

	// ListRoles returns roles matching the filter ordered by creation time.
	ListRoles(ctx context.Context, filter *ListFilter) ([]*Role, error)

	// CountRoles returns the number of roles matching the filter.
	CountRoles(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteRolesByApp removes all roles of an application.
	DeleteRolesByApp(ctx context.Context, appID id.ApplicationID) error
}
