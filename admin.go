package azguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// ──────────────────────────────────────────────────
// Application and scopes
// ──────────────────────────────────────────────────

// EnsureApplication registers the configured application when the store
// does not hold it yet and returns the stored record.
func (e *Engine) EnsureApplication(ctx context.Context, description string) (*application.Application, error) {
	s, owned, _, err := e.acquireStore(ctx)
	if err != nil {
		return nil, err
	}
	if owned {
		defer s.Close()
	}

	name := e.config.ApplicationName
	app, err := s.GetApplicationByName(ctx, name)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, backendError("get application", err)
	}

	now := time.Now().UTC()
	app = &application.Application{
		ID:          id.NewApplicationID(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return s.GetApplicationByName(ctx, name)
		}
		return nil, backendError("create application", err)
	}
	e.logger.Info("azguard: registered application", slog.String("application", name))
	return app, nil
}

// Scopes lists the scopes of the configured application.
func (e *Engine) Scopes(ctx context.Context) ([]*application.Scope, error) {
	h, err := e.adminHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()
	scopes, err := h.store.ListScopes(ctx, h.app.ID)
	if err != nil {
		return nil, backendError("list scopes", err)
	}
	return scopes, nil
}

// CreateScope adds a named scope to the configured application.
func (e *Engine) CreateScope(ctx context.Context, scopeName, description string) (*application.Scope, error) {
	name, err := checkParameter(scopeName, true, true, maxNameLength, "scopeName")
	if err != nil {
		return nil, err
	}
	h, err := e.adminHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	now := time.Now().UTC()
	sc := &application.Scope{
		ID:          id.NewScopeID(),
		AppID:       h.app.ID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateScope(ctx, sc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrScopeExists, name)
		}
		return nil, backendError("create scope", err)
	}
	return sc, nil
}

// DeleteScope removes a scope together with the tasks, roles and
// memberships defined in it. It returns false when the scope does not
// exist.
func (e *Engine) DeleteScope(ctx context.Context, scopeName string) (bool, error) {
	name, err := checkParameter(scopeName, true, true, maxNameLength, "scopeName")
	if err != nil {
		return false, err
	}
	h, err := e.adminHandle(ctx)
	if err != nil {
		return false, err
	}
	defer h.Close()

	sc, err := h.store.GetScopeByName(ctx, h.app.ID, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, backendError("get scope", err)
	}

	roles, err := h.store.ListRoles(ctx, &role.ListFilter{AppID: h.app.ID, Scope: &name})
	if err != nil {
		return false, backendError("list scope roles", err)
	}
	for _, r := range roles {
		if err := h.store.DeleteAssignmentsByRole(ctx, r.ID); err != nil {
			return false, backendError("delete role members", err)
		}
		if err := h.store.DeleteRole(ctx, r.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, backendError("delete role", err)
		}
		if e.plugins != nil {
			e.plugins.EmitRoleDeleted(ctx, r)
		}
	}

	tasks, err := h.store.ListTasks(ctx, &task.ListFilter{AppID: h.app.ID, Scope: &name})
	if err != nil {
		return false, backendError("list scope tasks", err)
	}
	for _, t := range tasks {
		if err := h.store.DeleteTask(ctx, t.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, backendError("delete task", err)
		}
		if e.plugins != nil {
			e.plugins.EmitTaskDeleted(ctx, t.ID)
		}
	}

	if err := h.store.DeleteScope(ctx, sc.ID); err != nil {
		return false, backendError("delete scope", err)
	}
	return true, nil
}

// adminHandle opens a handle at the application level, ignoring the
// configured scope, so that scope administration works before the scope
// exists.
func (e *Engine) adminHandle(ctx context.Context) (*Handle, error) {
	return e.OpenHandle(WithScope(ctx, ""))
}

// ──────────────────────────────────────────────────
// Operations
// ──────────────────────────────────────────────────

// OperationDefinition describes an operation to add to the application.
type OperationDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	OperationID int            `json:"operation_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DefineOperation adds an operation. Both the name and the numeric
// operation id must be unused in the application.
func (e *Engine) DefineOperation(ctx context.Context, def OperationDefinition) (*operation.Operation, error) {
	name, err := checkParameter(def.Name, true, true, maxNameLength, "name")
	if err != nil {
		return nil, err
	}
	if def.OperationID <= 0 {
		return nil, fmt.Errorf("%w: operation_id must be positive", ErrInvalidParameter)
	}
	h, err := e.adminHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if _, err := h.Operation(name); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationExists, name)
	}
	if _, taken := h.opsByID[def.OperationID]; taken {
		return nil, fmt.Errorf("%w: operation id %d", ErrOperationExists, def.OperationID)
	}

	now := time.Now().UTC()
	o := &operation.Operation{
		ID:          id.NewOperationID(),
		AppID:       h.app.ID,
		Name:        name,
		Description: def.Description,
		OperationID: def.OperationID,
		Metadata:    def.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateOperation(ctx, o); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrOperationExists, name)
		}
		return nil, backendError("create operation", err)
	}
	if e.plugins != nil {
		e.plugins.EmitOperationCreated(ctx, o)
	}
	return o, nil
}

// DeleteOperation removes an operation. Tasks and roles that still name
// it fail their expansion until the reference is removed. It returns
// false when the operation does not exist.
func (e *Engine) DeleteOperation(ctx context.Context, operationName string) (bool, error) {
	name, err := checkParameter(operationName, true, true, maxNameLength, "operationName")
	if err != nil {
		return false, err
	}
	h, err := e.adminHandle(ctx)
	if err != nil {
		return false, err
	}
	defer h.Close()

	o, err := h.Operation(name)
	if err != nil {
		return false, nil
	}
	if err := h.store.DeleteOperation(ctx, o.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, backendError("delete operation", err)
	}
	if e.plugins != nil {
		e.plugins.EmitOperationDeleted(ctx, o.ID)
	}
	return true, nil
}

// ──────────────────────────────────────────────────
// Tasks
// ──────────────────────────────────────────────────

// TaskDefinition describes a task to add in the check scope.
type TaskDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	BizRule     string         `json:"biz_rule,omitempty"`
	Operations  []string       `json:"operations,omitempty"`
	Tasks       []string       `json:"tasks,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// DefineTask adds a task in the check scope. Every referenced operation
// and nested task must exist and the business rule must compile.
func (e *Engine) DefineTask(ctx context.Context, def TaskDefinition) (*task.Task, error) {
	name, err := checkParameter(def.Name, true, true, maxNameLength, "name")
	if err != nil {
		return nil, err
	}
	if def.BizRule != "" {
		if err := CompileRule(def.BizRule); err != nil {
			return nil, err
		}
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if h.scopeTask(name, h.Scope()) != nil {
		return nil, fmt.Errorf("%w: %q", ErrTaskExists, name)
	}
	ops, tasks, err := h.checkGrants(def.Operations, def.Tasks)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &task.Task{
		ID:          id.NewTaskID(),
		AppID:       h.app.ID,
		Scope:       h.Scope(),
		Name:        name,
		Description: def.Description,
		BizRule:     def.BizRule,
		Operations:  ops,
		Tasks:       tasks,
		Metadata:    def.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateTask(ctx, t); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %q", ErrTaskExists, name)
		}
		return nil, backendError("create task", err)
	}
	if e.plugins != nil {
		e.plugins.EmitTaskCreated(ctx, t)
	}
	return t, nil
}

// DeleteTask removes a task defined in the check scope. Role definitions
// are removed with their role through DeleteRole. It returns false when
// the task does not exist.
func (e *Engine) DeleteTask(ctx context.Context, taskName string) (bool, error) {
	name, err := checkParameter(taskName, true, true, maxNameLength, "taskName")
	if err != nil {
		return false, err
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return false, err
	}
	defer h.Close()

	t := h.scopeTask(name, h.Scope())
	if t == nil {
		return false, nil
	}
	if t.IsRoleDefinition {
		return false, fmt.Errorf("%w: task %q defines a role; delete the role instead", ErrInvalidParameter, name)
	}
	if err := h.store.DeleteTask(ctx, t.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, backendError("delete task", err)
	}
	if e.plugins != nil {
		e.plugins.EmitTaskDeleted(ctx, t.ID)
	}
	return true, nil
}

// ──────────────────────────────────────────────────
// Role grants
// ──────────────────────────────────────────────────

// GrantToRole adds tasks and operations to what a role grants. Grants of
// a role created with CreateRole land on its role-definition task; other
// roles are updated directly. Names already granted are skipped.
func (e *Engine) GrantToRole(ctx context.Context, roleName string, tasks, operations []string) error {
	return e.changeGrants(ctx, roleName, tasks, operations, true)
}

// RevokeFromRole removes tasks and operations from what a role grants.
// Names that are not granted are ignored.
func (e *Engine) RevokeFromRole(ctx context.Context, roleName string, tasks, operations []string) error {
	return e.changeGrants(ctx, roleName, tasks, operations, false)
}

func (e *Engine) changeGrants(ctx context.Context, roleName string, tasks, operations []string, grant bool) error {
	name, err := checkParameter(roleName, true, true, 0, "roleName")
	if err != nil {
		return err
	}
	if len(tasks) == 0 && len(operations) == 0 {
		return fmt.Errorf("%w: nothing to change", ErrInvalidParameter)
	}
	h, err := e.OpenHandle(ctx)
	if err != nil {
		return err
	}
	defer h.Close()

	r, err := h.Role(name, h.Scope())
	if err != nil {
		return err
	}
	if grant {
		if operations, tasks, err = h.checkGrants(operations, tasks); err != nil {
			return err
		}
	}
	now := time.Now().UTC()

	if def := h.scopeTask(r.Name, r.Scope); def != nil && def.IsRoleDefinition && slices.Contains(r.Tasks, def.Name) {
		def.Operations = mergeNames(def.Operations, operations, grant)
		def.Tasks = mergeNames(def.Tasks, tasks, grant)
		def.UpdatedAt = now
		if err := h.store.UpdateTask(ctx, def); err != nil {
			return backendError("update role definition", err)
		}
		return nil
	}

	r.Operations = mergeNames(r.Operations, operations, grant)
	r.Tasks = mergeNames(r.Tasks, tasks, grant)
	r.UpdatedAt = now
	if err := h.store.UpdateRole(ctx, r); err != nil {
		return backendError("update role", err)
	}
	return nil
}

// checkGrants validates operation and task references against the
// snapshot, returning trimmed names.
func (h *Handle) checkGrants(operations, tasks []string) ([]string, []string, error) {
	var err error
	if len(operations) > 0 {
		if operations, err = checkArrayParameter(operations, true, true, maxNameLength, "operations"); err != nil {
			return nil, nil, err
		}
		for _, o := range operations {
			if _, err := h.Operation(o); err != nil {
				return nil, nil, err
			}
		}
	}
	if len(tasks) > 0 {
		if tasks, err = checkArrayParameter(tasks, true, true, maxNameLength, "tasks"); err != nil {
			return nil, nil, err
		}
		for _, t := range tasks {
			if _, err := h.Task(t, h.Scope()); err != nil {
				return nil, nil, err
			}
		}
	}
	return operations, tasks, nil
}

func mergeNames(current, change []string, add bool) []string {
	out := slices.Clone(current)
	for _, n := range change {
		i := slices.Index(out, n)
		switch {
		case add && i < 0:
			out = append(out, n)
		case !add && i >= 0:
			out = slices.Delete(out, i, i+1)
		}
	}
	return out
}
