// Package memory provides an in-memory implementation of the azguard
// composite store. It is intended for testing, development and policy
// documents loaded at startup.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Compile-time interface checks.
var (
	_ application.Store = (*Store)(nil)
	_ operation.Store   = (*Store)(nil)
	_ task.Store        = (*Store)(nil)
	_ role.Store        = (*Store)(nil)
	_ assignment.Store  = (*Store)(nil)
	_ checklog.Store    = (*Store)(nil)
	_ store.Store       = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all azguard entities.
type Store struct {
	mu sync.RWMutex

	applications map[string]*application.Application
	scopes       map[string]*application.Scope
	operations   map[string]*operation.Operation
	tasks        map[string]*task.Task
	roles        map[string]*role.Role
	assignments  map[string]*assignment.Assignment
	checkLogs    map[string]*checklog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		applications: make(map[string]*application.Application),
		scopes:       make(map[string]*application.Scope),
		operations:   make(map[string]*operation.Operation),
		tasks:        make(map[string]*task.Task),
		roles:        make(map[string]*role.Role),
		assignments:  make(map[string]*assignment.Assignment),
		checkLogs:    make(map[string]*checklog.Entry),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Application Store
// ──────────────────────────────────────────────────

func (s *Store) CreateApplication(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.applications {
		if existing.Name == a.Name {
			return fmt.Errorf("application %q: %w", a.Name, store.ErrDuplicate)
		}
	}
	s.applications[a.ID.String()] = copyApplication(a)
	return nil
}

func (s *Store) GetApplication(_ context.Context, appID id.ApplicationID) (*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[appID.String()]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", appID, store.ErrNotFound)
	}
	return copyApplication(a), nil
}

func (s *Store) GetApplicationByName(_ context.Context, name string) (*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.Name == name {
			return copyApplication(a), nil
		}
	}
	return nil, fmt.Errorf("application %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateApplication(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[a.ID.String()]; !ok {
		return fmt.Errorf("application %s: %w", a.ID, store.ErrNotFound)
	}
	s.applications[a.ID.String()] = copyApplication(a)
	return nil
}

func (s *Store) DeleteApplication(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[appID.String()]; !ok {
		return fmt.Errorf("application %s: %w", appID, store.ErrNotFound)
	}
	delete(s.applications, appID.String())
	return nil
}

func (s *Store) ListApplications(_ context.Context, filter *application.ListFilter) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*application.Application, 0, len(s.applications))
	for _, a := range s.applications {
		if filter != nil && !matchesSearch(a.Name, filter.Search) {
			continue
		}
		result = append(result, copyApplication(a))
	}
	slices.SortFunc(result, func(a, b *application.Application) int { return cmp.Compare(a.Name, b.Name) })
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CreateScope(_ context.Context, sc *application.Scope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.scopes {
		if existing.AppID == sc.AppID && existing.Name == sc.Name {
			return fmt.Errorf("scope %q: %w", sc.Name, store.ErrDuplicate)
		}
	}
	c := *sc
	s.scopes[sc.ID.String()] = &c
	return nil
}

func (s *Store) GetScopeByName(_ context.Context, appID id.ApplicationID, name string) (*application.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sc := range s.scopes {
		if sc.AppID == appID && sc.Name == name {
			c := *sc
			return &c, nil
		}
	}
	return nil, fmt.Errorf("scope %q: %w", name, store.ErrNotFound)
}

func (s *Store) ListScopes(_ context.Context, appID id.ApplicationID) ([]*application.Scope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*application.Scope
	for _, sc := range s.scopes {
		if sc.AppID == appID {
			c := *sc
			result = append(result, &c)
		}
	}
	slices.SortFunc(result, func(a, b *application.Scope) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

func (s *Store) DeleteScope(_ context.Context, scopeID id.ScopeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, scopeID.String())
	return nil
}

// ──────────────────────────────────────────────────
// Operation Store
// ──────────────────────────────────────────────────

func (s *Store) CreateOperation(_ context.Context, o *operation.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.operations {
		if existing.AppID != o.AppID {
			continue
		}
		if existing.Name == o.Name || existing.OperationID == o.OperationID {
			return fmt.Errorf("operation %q (%d): %w", o.Name, o.OperationID, store.ErrDuplicate)
		}
	}
	s.operations[o.ID.String()] = copyOperation(o)
	return nil
}

func (s *Store) GetOperation(_ context.Context, opID id.OperationID) (*operation.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.operations[opID.String()]
	if !ok {
		return nil, fmt.Errorf("operation %s: %w", opID, store.ErrNotFound)
	}
	return copyOperation(o), nil
}

func (s *Store) GetOperationByName(_ context.Context, appID id.ApplicationID, name string) (*operation.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.operations {
		if o.AppID == appID && o.Name == name {
			return copyOperation(o), nil
		}
	}
	return nil, fmt.Errorf("operation %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateOperation(_ context.Context, o *operation.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.operations[o.ID.String()]; !ok {
		return fmt.Errorf("operation %s: %w", o.ID, store.ErrNotFound)
	}
	s.operations[o.ID.String()] = copyOperation(o)
	return nil
}

func (s *Store) DeleteOperation(_ context.Context, opID id.OperationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.operations[opID.String()]; !ok {
		return fmt.Errorf("operation %s: %w", opID, store.ErrNotFound)
	}
	delete(s.operations, opID.String())
	return nil
}

func (s *Store) ListOperations(_ context.Context, filter *operation.ListFilter) ([]*operation.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*operation.Operation, 0, len(s.operations))
	for _, o := range s.operations {
		if filter != nil {
			if !filter.AppID.IsNil() && o.AppID != filter.AppID {
				continue
			}
			if !matchesSearch(o.Name, filter.Search) {
				continue
			}
		}
		result = append(result, copyOperation(o))
	}
	slices.SortFunc(result, func(a, b *operation.Operation) int { return cmp.Compare(a.OperationID, b.OperationID) })
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CountOperations(ctx context.Context, filter *operation.ListFilter) (int64, error) {
	var f operation.ListFilter
	if filter != nil {
		f = *filter
		f.Limit, f.Offset = 0, 0
	}
	list, err := s.ListOperations(ctx, &f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteOperationsByApp(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.operations, func(_ string, o *operation.Operation) bool { return o.AppID == appID })
	return nil
}

// ──────────────────────────────────────────────────
// Task Store
// ──────────────────────────────────────────────────

func (s *Store) CreateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tasks {
		if existing.AppID == t.AppID && existing.Scope == t.Scope && existing.Name == t.Name {
			return fmt.Errorf("task %q: %w", t.Name, store.ErrDuplicate)
		}
	}
	s.tasks[t.ID.String()] = copyTask(t)
	return nil
}

func (s *Store) GetTask(_ context.Context, taskID id.TaskID) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID.String()]
	if !ok {
		return nil, fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	}
	return copyTask(t), nil
}

func (s *Store) GetTaskByName(_ context.Context, appID id.ApplicationID, scope, name string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.AppID == appID && t.Scope == scope && t.Name == name {
			return copyTask(t), nil
		}
	}
	return nil, fmt.Errorf("task %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID.String()]; !ok {
		return fmt.Errorf("task %s: %w", t.ID, store.ErrNotFound)
	}
	s.tasks[t.ID.String()] = copyTask(t)
	return nil
}

func (s *Store) DeleteTask(_ context.Context, taskID id.TaskID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[taskID.String()]; !ok {
		return fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	}
	delete(s.tasks, taskID.String())
	return nil
}

func (s *Store) ListTasks(_ context.Context, filter *task.ListFilter) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if filter != nil {
			if !filter.AppID.IsNil() && t.AppID != filter.AppID {
				continue
			}
			if filter.Scope != nil && t.Scope != *filter.Scope {
				continue
			}
			if filter.IsRoleDefinition != nil && t.IsRoleDefinition != *filter.IsRoleDefinition {
				continue
			}
			if !matchesSearch(t.Name, filter.Search) {
				continue
			}
		}
		result = append(result, copyTask(t))
	}
	slices.SortFunc(result, func(a, b *task.Task) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Name, b.Name))
	})
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CountTasks(ctx context.Context, filter *task.ListFilter) (int64, error) {
	var f task.ListFilter
	if filter != nil {
		f = *filter
		f.Limit, f.Offset = 0, 0
	}
	list, err := s.ListTasks(ctx, &f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteTasksByApp(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.tasks, func(_ string, t *task.Task) bool { return t.AppID == appID })
	return nil
}

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.roles {
		if existing.AppID == r.AppID && existing.Scope == r.Scope && existing.Name == r.Name {
			return fmt.Errorf("role %q: %w", r.Name, store.ErrDuplicate)
		}
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleByName(_ context.Context, appID id.ApplicationID, scope, name string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.AppID == appID && r.Scope == scope && r.Name == name {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role %q: %w", name, store.ErrNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[roleID.String()]; !ok {
		return fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	delete(s.roles, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if !filter.AppID.IsNil() && r.AppID != filter.AppID {
				continue
			}
			if filter.Scope != nil && r.Scope != *filter.Scope {
				continue
			}
			if !matchesSearch(r.Name, filter.Search) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	slices.SortFunc(result, func(a, b *role.Role) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Name, b.Name))
	})
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	var f role.ListFilter
	if filter != nil {
		f = *filter
		f.Limit, f.Offset = 0, 0
	}
	list, err := s.ListRoles(ctx, &f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteRolesByApp(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.roles, func(_ string, r *role.Role) bool { return r.AppID == appID })
	return nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.RoleID == a.RoleID && existing.SID == a.SID {
			return nil
		}
	}
	c := *a
	s.assignments[a.ID.String()] = &c
	return nil
}

func (s *Store) GetAssignment(_ context.Context, asgID id.AssignmentID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[asgID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", asgID, store.ErrNotFound)
	}
	c := *a
	return &c, nil
}

func (s *Store) DeleteAssignment(_ context.Context, asgID id.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assignments[asgID.String()]; !ok {
		return fmt.Errorf("assignment %s: %w", asgID, store.ErrNotFound)
	}
	delete(s.assignments, asgID.String())
	return nil
}

func (s *Store) DeleteMember(_ context.Context, roleID id.RoleID, sid string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.RoleID == roleID && a.SID == sid {
			delete(s.assignments, k)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter != nil {
			if !filter.AppID.IsNil() && a.AppID != filter.AppID {
				continue
			}
			if filter.RoleID != nil && a.RoleID != *filter.RoleID {
				continue
			}
			if filter.SID != "" && a.SID != filter.SID {
				continue
			}
		}
		c := *a
		result = append(result, &c)
	}
	sortAssignments(result)
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	var f assignment.ListFilter
	if filter != nil {
		f = *filter
		f.Limit, f.Offset = 0, 0
	}
	list, err := s.ListAssignments(ctx, &f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListRoleMembers(ctx context.Context, roleID id.RoleID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{RoleID: &roleID})
}

func (s *Store) ListRolesForSIDs(_ context.Context, appID id.ApplicationID, sids []string) ([]id.RoleID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var result []id.RoleID
	for _, a := range s.assignments {
		if a.AppID != appID || !slices.Contains(sids, a.SID) {
			continue
		}
		if _, ok := seen[a.RoleID.String()]; ok {
			continue
		}
		seen[a.RoleID.String()] = struct{}{}
		result = append(result, a.RoleID)
	}
	slices.SortFunc(result, func(a, b id.RoleID) int { return cmp.Compare(a.String(), b.String()) })
	return result, nil
}

func (s *Store) DeleteAssignmentsByRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.assignments, func(_ string, a *assignment.Assignment) bool { return a.RoleID == roleID })
	return nil
}

func (s *Store) DeleteAssignmentsByApp(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.assignments, func(_ string, a *assignment.Assignment) bool { return a.AppID == appID })
	return nil
}

// ──────────────────────────────────────────────────
// Check Log Store
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(_ context.Context, e *checklog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkLogs[e.ID.String()] = copyCheckLog(e)
	return nil
}

func (s *Store) GetCheckLog(_ context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.checkLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
	}
	return copyCheckLog(e), nil
}

func (s *Store) ListCheckLogs(_ context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*checklog.Entry, 0, len(s.checkLogs))
	for _, e := range s.checkLogs {
		if filter != nil && !matchesCheckLog(e, filter) {
			continue
		}
		result = append(result, copyCheckLog(e))
	}
	slices.SortFunc(result, func(a, b *checklog.Entry) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID.String(), a.ID.String()))
	})
	if filter == nil {
		return result, nil
	}
	return applyPagination(result, filter.Limit, filter.Offset), nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	var f checklog.QueryFilter
	if filter != nil {
		f = *filter
		f.Limit, f.Offset = 0, 0
	}
	list, err := s.ListCheckLogs(ctx, &f)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeCheckLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.checkLogs {
		if e.CreatedAt.Before(before) {
			delete(s.checkLogs, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteCheckLogsByApp(_ context.Context, appID id.ApplicationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.DeleteFunc(s.checkLogs, func(_ string, e *checklog.Entry) bool { return e.AppID == appID })
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func matchesSearch(name, search string) bool {
	return search == "" || strings.Contains(strings.ToLower(name), strings.ToLower(search))
}

func matchesCheckLog(e *checklog.Entry, f *checklog.QueryFilter) bool {
	if !f.AppID.IsNil() && e.AppID != f.AppID {
		return false
	}
	if f.UserName != "" && e.UserName != f.UserName {
		return false
	}
	if f.AuditID != "" && e.AuditID != f.AuditID {
		return false
	}
	if f.Allowed != nil && e.Allowed != *f.Allowed {
		return false
	}
	if f.After != nil && !e.CreatedAt.After(*f.After) {
		return false
	}
	if f.Before != nil && !e.CreatedAt.Before(*f.Before) {
		return false
	}
	return true
}

func sortAssignments(items []*assignment.Assignment) {
	slices.SortFunc(items, func(a, b *assignment.Assignment) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.SID, b.SID))
	})
}

func copyApplication(a *application.Application) *application.Application {
	c := *a
	c.Metadata = maps.Clone(a.Metadata)
	return &c
}

func copyOperation(o *operation.Operation) *operation.Operation {
	c := *o
	c.Metadata = maps.Clone(o.Metadata)
	return &c
}

func copyTask(t *task.Task) *task.Task {
	c := *t
	c.Operations = slices.Clone(t.Operations)
	c.Tasks = slices.Clone(t.Tasks)
	c.Metadata = maps.Clone(t.Metadata)
	return &c
}

func copyRole(r *role.Role) *role.Role {
	c := *r
	c.Tasks = slices.Clone(r.Tasks)
	c.Operations = slices.Clone(r.Operations)
	c.Metadata = maps.Clone(r.Metadata)
	return &c
}

func copyCheckLog(e *checklog.Entry) *checklog.Entry {
	c := *e
	c.OperationIDs = slices.Clone(e.OperationIDs)
	c.Results = slices.Clone(e.Results)
	c.Params = maps.Clone(e.Params)
	return &c
}

func applyPagination[T any](items []*T, limit, offset int) []*T {
	if offset > 0 && offset < len(items) {
		items = items[offset:]
	} else if offset >= len(items) && offset > 0 {
		return nil
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
