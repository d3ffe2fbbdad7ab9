// Package plugin defines the azguard plugin system. Plugins are notified
// of lifecycle events (access check performed, role created, members
// added) and can react with logging, metrics or auditing.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Access check hooks
// ──────────────────────────────────────────────────

// BeforeCheck is called before an access check is evaluated.
// req is *azguard.AccessCheckRequest (passed as any to avoid an import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an access check completes.
// req is *azguard.AccessCheckRequest; result is *azguard.AccessCheckResult.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Role hooks
// ──────────────────────────────────────────────────

// RoleCreated is called after a role is created.
type RoleCreated interface {
	OnRoleCreated(ctx context.Context, r *role.Role) error
}

// RoleDeleted is called after a role and its assignments are deleted.
type RoleDeleted interface {
	OnRoleDeleted(ctx context.Context, r *role.Role) error
}

// MembersAdded is called after SIDs are added to a role.
type MembersAdded interface {
	OnMembersAdded(ctx context.Context, r *role.Role, added []*assignment.Assignment) error
}

// MembersRemoved is called after SIDs are removed from a role.
type MembersRemoved interface {
	OnMembersRemoved(ctx context.Context, r *role.Role, sids []string) error
}

// ──────────────────────────────────────────────────
// Policy definition hooks
// ──────────────────────────────────────────────────

// OperationCreated is called after an operation is defined.
type OperationCreated interface {
	OnOperationCreated(ctx context.Context, o *operation.Operation) error
}

// OperationDeleted is called after an operation is removed.
type OperationDeleted interface {
	OnOperationDeleted(ctx context.Context, opID id.OperationID) error
}

// TaskCreated is called after a task is defined.
type TaskCreated interface {
	OnTaskCreated(ctx context.Context, t *task.Task) error
}

// TaskDeleted is called after a task is removed.
type TaskDeleted interface {
	OnTaskDeleted(ctx context.Context, taskID id.TaskID) error
}

// Shutdown is called when the engine stops.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
