package azguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Handle is an open policy store for one application. It holds a snapshot
// of the application's scopes, operations, tasks, roles and role members
// taken at open time or at the last UpdateCache. The snapshot covers every
// scope; the handle scope is only the default for client contexts.
//
// Operation ids obtained from a Handle are only meaningful for that Handle.
// A Handle is not safe for concurrent use; open one per check and Close it
// when done.
type Handle struct {
	eng      *Engine
	store    store.Store
	owned    bool
	location string
	scope    string
	app      *application.Application
	closed   bool

	scopes     map[string]struct{}
	operations []*operation.Operation
	opsByID    map[int]*operation.Operation
	tasks      []*task.Task
	roles      []*role.Role
	members    map[string][]*assignment.Assignment

	// Business rule results keyed by parameter fingerprint and task ID.
	ruleResults map[string]bool
}

// OpenHandle opens the configured application in the scope selected by
// ctx (see WithScope). It fails with ErrStoreUnavailable when the store
// cannot be reached or the application is not registered.
func (e *Engine) OpenHandle(ctx context.Context) (*Handle, error) {
	s, owned, location, err := e.acquireStore(ctx)
	if err != nil {
		return nil, err
	}
	h := &Handle{
		eng:      e,
		store:    s,
		owned:    owned,
		location: location,
		scope:    e.scopeFromContext(ctx),
	}
	if err := h.open(ctx); err != nil {
		if cerr := h.Close(); cerr != nil {
			e.logger.Warn("azguard: close policy store after failed open", slog.String("error", cerr.Error()))
		}
		return nil, err
	}
	return h, nil
}

func (e *Engine) acquireStore(ctx context.Context) (store.Store, bool, string, error) {
	if e.opener == nil {
		return e.store, false, e.config.StoreLocation, nil
	}
	location, err := ResolveStoreLocation(e.config.StoreLocation)
	if err != nil {
		return nil, false, "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s, err := e.opener(ctx, location, e.config.Credentials)
	if err != nil {
		e.logger.Error("azguard: open policy store",
			slog.String("location", location),
			slog.String("error", err.Error()),
		)
		return nil, false, location, fmt.Errorf("%w: %w", ErrStoreUnavailable, backendError("open store", err))
	}
	return s, true, location, nil
}

func (h *Handle) open(ctx context.Context) error {
	if err := h.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, backendError("ping", err))
	}
	name := h.eng.config.ApplicationName
	app, err := h.store.GetApplicationByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: application %q is not registered", ErrStoreUnavailable, name)
		}
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, backendError("open application", err))
	}
	h.app = app
	if err := h.load(ctx); err != nil {
		return err
	}
	return h.checkScope(h.scope)
}

func (h *Handle) load(ctx context.Context) error {
	appID := h.app.ID

	scopes, err := h.store.ListScopes(ctx, appID)
	if err != nil {
		return backendError("list scopes", err)
	}
	ops, err := h.store.ListOperations(ctx, &operation.ListFilter{AppID: appID})
	if err != nil {
		return backendError("list operations", err)
	}
	tasks, err := h.store.ListTasks(ctx, &task.ListFilter{AppID: appID})
	if err != nil {
		return backendError("list tasks", err)
	}
	roles, err := h.store.ListRoles(ctx, &role.ListFilter{AppID: appID})
	if err != nil {
		return backendError("list roles", err)
	}
	asgs, err := h.store.ListAssignments(ctx, &assignment.ListFilter{AppID: appID})
	if err != nil {
		return backendError("list assignments", err)
	}

	h.scopes = make(map[string]struct{}, len(scopes))
	for _, sc := range scopes {
		h.scopes[sc.Name] = struct{}{}
	}
	h.operations = ops
	h.opsByID = make(map[int]*operation.Operation, len(ops))
	for _, o := range ops {
		h.opsByID[o.OperationID] = o
	}
	h.tasks = tasks
	h.roles = roles
	h.members = make(map[string][]*assignment.Assignment, len(roles))
	for _, a := range asgs {
		key := a.RoleID.String()
		h.members[key] = append(h.members[key], a)
	}
	h.ruleResults = make(map[string]bool)
	return nil
}

// Close releases the handle. A store produced by a StoreOpener is closed
// with it. Close is idempotent.
func (h *Handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.ruleResults = nil
	if h.owned {
		return h.store.Close()
	}
	return nil
}

// UpdateCache reloads the policy snapshot and drops cached business rule
// results. Call it before checks that carry parameters.
func (h *Handle) UpdateCache(ctx context.Context) error {
	if h.closed {
		return ErrHandleClosed
	}
	return h.load(ctx)
}

// Application returns the opened application.
func (h *Handle) Application() *application.Application { return h.app }

// Scope returns the scope the handle was opened in.
func (h *Handle) Scope() string { return h.scope }

// HasScope reports whether the application defines scope. The
// application level "" always exists.
func (h *Handle) HasScope(scope string) bool {
	if scope == "" {
		return true
	}
	_, ok := h.scopes[scope]
	return ok
}

func (h *Handle) checkScope(scope string) error {
	if !h.HasScope(scope) {
		return fmt.Errorf("%w: %q", ErrScopeNotFound, scope)
	}
	return nil
}

// Location returns the resolved store location.
func (h *Handle) Location() string { return h.location }

// Store returns the store backing the handle.
func (h *Handle) Store() store.Store { return h.store }

// Operations returns every operation ordered by operation id.
func (h *Handle) Operations() []*operation.Operation {
	return slices.Clone(h.operations)
}

// Operation returns the operation with the given name.
func (h *Handle) Operation(name string) (*operation.Operation, error) {
	for _, o := range h.operations {
		if namesEqual(h.fold(), o.Name, name) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, name)
}

// Tasks returns the tasks visible in scope: application-level tasks plus
// tasks defined in scope. A scope task shadows an application task of the
// same name.
func (h *Handle) Tasks(scope string) []*task.Task {
	var out []*task.Task
	for _, t := range h.tasks {
		switch {
		case t.Scope == scope:
			out = append(out, t)
		case t.Scope == "" && h.scopeTask(t.Name, scope) == nil:
			out = append(out, t)
		}
	}
	return out
}

// Task returns the task named name as seen from scope.
func (h *Handle) Task(name, scope string) (*task.Task, error) {
	if t := h.findTask(name, scope); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrTaskNotFound, name)
}

// OperationsForTask expands a task into the ids of its operations,
// including those of nested tasks. Ids are de-duplicated and keep
// definition order.
func (h *Handle) OperationsForTask(name, scope string) ([]int, error) {
	if h.closed {
		return nil, ErrHandleClosed
	}
	t, err := h.Task(name, scope)
	if err != nil {
		return nil, err
	}
	var ids []int
	seenOps := make(map[int]struct{})
	seenTasks := make(map[*task.Task]struct{})
	var walk func(t *task.Task) error
	walk = func(t *task.Task) error {
		if _, ok := seenTasks[t]; ok {
			return nil
		}
		seenTasks[t] = struct{}{}
		for _, opName := range t.Operations {
			op, err := h.Operation(opName)
			if err != nil {
				return fmt.Errorf("task %q: %w", t.Name, err)
			}
			if _, ok := seenOps[op.OperationID]; !ok {
				seenOps[op.OperationID] = struct{}{}
				ids = append(ids, op.OperationID)
			}
		}
		for _, sub := range t.Tasks {
			st := h.findTask(sub, t.Scope)
			if st == nil {
				return fmt.Errorf("task %q: %w: %q", t.Name, ErrTaskNotFound, sub)
			}
			if err := walk(st); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(t); err != nil {
		return nil, err
	}
	return ids, nil
}

// Roles returns the roles visible in scope: application-level roles plus
// roles defined in scope.
func (h *Handle) Roles(scope string) []*role.Role {
	var out []*role.Role
	for _, r := range h.roles {
		if r.Scope == "" || r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}

// Role returns the role named name as seen from scope. A scope role is
// preferred over an application role of the same name.
func (h *Handle) Role(name, scope string) (*role.Role, error) {
	var appLevel *role.Role
	for _, r := range h.roles {
		if !namesEqual(h.fold(), r.Name, name) {
			continue
		}
		if scope != "" && r.Scope == scope {
			return r, nil
		}
		if r.Scope == "" {
			appLevel = r
		}
	}
	if appLevel == nil {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}
	return appLevel, nil
}

// Members returns the assignments of a role.
func (h *Handle) Members(r *role.Role) []*assignment.Assignment {
	return slices.Clone(h.members[r.ID.String()])
}

func (h *Handle) isMember(r *role.Role, sid string) bool {
	for _, a := range h.members[r.ID.String()] {
		if a.SID == sid {
			return true
		}
	}
	return false
}

func (h *Handle) findTask(name, scope string) *task.Task {
	if t := h.scopeTask(name, scope); t != nil {
		return t
	}
	return h.scopeTask(name, "")
}

func (h *Handle) scopeTask(name, scope string) *task.Task {
	if scope == "" && name == "" {
		return nil
	}
	for _, t := range h.tasks {
		if t.Scope == scope && namesEqual(h.fold(), t.Name, name) {
			return t
		}
	}
	return nil
}

func (h *Handle) fold() bool { return h.eng.config.foldNames() }
