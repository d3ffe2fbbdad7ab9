package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

// entry pairs a hook with the plugin name for logging.
type entry[H any] struct {
	name string
	hook H
}

// Registry holds registered plugins and dispatches lifecycle events.
// Plugins are sorted into per-hook slices at registration time so emit
// calls only visit plugins implementing that hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeCheck      []entry[BeforeCheck]
	afterCheck       []entry[AfterCheck]
	roleCreated      []entry[RoleCreated]
	roleDeleted      []entry[RoleDeleted]
	membersAdded     []entry[MembersAdded]
	membersRemoved   []entry[MembersRemoved]
	operationCreated []entry[OperationCreated]
	operationDeleted []entry[OperationDeleted]
	taskCreated      []entry[TaskCreated]
	taskDeleted      []entry[TaskDeleted]
	shutdown         []entry[Shutdown]
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a plugin. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, entry[BeforeCheck]{name, h})
	}
	if h, ok := p.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, entry[AfterCheck]{name, h})
	}
	if h, ok := p.(RoleCreated); ok {
		r.roleCreated = append(r.roleCreated, entry[RoleCreated]{name, h})
	}
	if h, ok := p.(RoleDeleted); ok {
		r.roleDeleted = append(r.roleDeleted, entry[RoleDeleted]{name, h})
	}
	if h, ok := p.(MembersAdded); ok {
		r.membersAdded = append(r.membersAdded, entry[MembersAdded]{name, h})
	}
	if h, ok := p.(MembersRemoved); ok {
		r.membersRemoved = append(r.membersRemoved, entry[MembersRemoved]{name, h})
	}
	if h, ok := p.(OperationCreated); ok {
		r.operationCreated = append(r.operationCreated, entry[OperationCreated]{name, h})
	}
	if h, ok := p.(OperationDeleted); ok {
		r.operationDeleted = append(r.operationDeleted, entry[OperationDeleted]{name, h})
	}
	if h, ok := p.(TaskCreated); ok {
		r.taskCreated = append(r.taskCreated, entry[TaskCreated]{name, h})
	}
	if h, ok := p.(TaskDeleted); ok {
		r.taskDeleted = append(r.taskDeleted, entry[TaskDeleted]{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, entry[Shutdown]{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// ──────────────────────────────────────────────────
// Access check emitters
// ──────────────────────────────────────────────────

// EmitBeforeCheck notifies all plugins that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all plugins that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Role emitters
// ──────────────────────────────────────────────────

// EmitRoleCreated notifies all plugins that implement RoleCreated.
func (r *Registry) EmitRoleCreated(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleCreated {
		if err := e.hook.OnRoleCreated(ctx, rl); err != nil {
			r.logHookError("OnRoleCreated", e.name, err)
		}
	}
}

// EmitRoleDeleted notifies all plugins that implement RoleDeleted.
func (r *Registry) EmitRoleDeleted(ctx context.Context, rl *role.Role) {
	for _, e := range r.roleDeleted {
		if err := e.hook.OnRoleDeleted(ctx, rl); err != nil {
			r.logHookError("OnRoleDeleted", e.name, err)
		}
	}
}

// EmitMembersAdded notifies all plugins that implement MembersAdded.
func (r *Registry) EmitMembersAdded(ctx context.Context, rl *role.Role, added []*assignment.Assignment) {
	for _, e := range r.membersAdded {
		if err := e.hook.OnMembersAdded(ctx, rl, added); err != nil {
			r.logHookError("OnMembersAdded", e.name, err)
		}
	}
}

// EmitMembersRemoved notifies all plugins that implement MembersRemoved.
func (r *Registry) EmitMembersRemoved(ctx context.Context, rl *role.Role, sids []string) {
	for _, e := range r.membersRemoved {
		if err := e.hook.OnMembersRemoved(ctx, rl, sids); err != nil {
			r.logHookError("OnMembersRemoved", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Policy definition emitters
// ──────────────────────────────────────────────────

// EmitOperationCreated notifies all plugins that implement OperationCreated.
func (r *Registry) EmitOperationCreated(ctx context.Context, o *operation.Operation) {
	for _, e := range r.operationCreated {
		if err := e.hook.OnOperationCreated(ctx, o); err != nil {
			r.logHookError("OnOperationCreated", e.name, err)
		}
	}
}

// EmitOperationDeleted notifies all plugins that implement OperationDeleted.
func (r *Registry) EmitOperationDeleted(ctx context.Context, opID id.OperationID) {
	for _, e := range r.operationDeleted {
		if err := e.hook.OnOperationDeleted(ctx, opID); err != nil {
			r.logHookError("OnOperationDeleted", e.name, err)
		}
	}
}

// EmitTaskCreated notifies all plugins that implement TaskCreated.
func (r *Registry) EmitTaskCreated(ctx context.Context, t *task.Task) {
	for _, e := range r.taskCreated {
		if err := e.hook.OnTaskCreated(ctx, t); err != nil {
			r.logHookError("OnTaskCreated", e.name, err)
		}
	}
}

// EmitTaskDeleted notifies all plugins that implement TaskDeleted.
func (r *Registry) EmitTaskDeleted(ctx context.Context, taskID id.TaskID) {
	for _, e := range r.taskDeleted {
		if err := e.hook.OnTaskDeleted(ctx, taskID); err != nil {
			r.logHookError("OnTaskDeleted", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Hook errors are never propagated to the caller.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
