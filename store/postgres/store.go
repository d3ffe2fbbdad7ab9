// Package postgres provides a PostgreSQL implementation of the azguard
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite azguard store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("azguard/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("azguard/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// mapWriteErr turns a unique violation into store.ErrDuplicate and any other
// server error into a *store.Error carrying its SQLSTATE.
func mapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("azguard/postgres: %s: %w", op, err)
	}
	if pgErr.Code == uniqueViolation {
		return fmt.Errorf("azguard/postgres: %s: %s: %w", op, pgErr.ConstraintName, store.ErrDuplicate)
	}
	return &store.Error{
		Code:    pgErr.Code,
		Message: "azguard/postgres: " + op + ": " + pgErr.Message,
		Err:     err,
	}
}

// rowsResult is the part of a grove exec result requireRow needs.
type rowsResult interface {
	RowsAffected() (int64, error)
}

// requireRow reports store.ErrNotFound when a write touched no rows.
func requireRow(res rowsResult, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("azguard/postgres: %s rows: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	if updated != nil && updated.IsZero() {
		*updated = *created
	}
}

func likeName(search string) string {
	return "%" + search + "%"
}

// ──────────────────────────────────────────────────
// Application operations
// ──────────────────────────────────────────────────

func (s *Store) CreateApplication(ctx context.Context, a *application.Application) error {
	stamp(&a.CreatedAt, &a.UpdatedAt)
	if _, err := s.pgdb.NewInsert(applicationToModel(a)).Exec(ctx); err != nil {
		return mapWriteErr("create application", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, appID id.ApplicationID) (*application.Application, error) {
	m := new(applicationModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", appID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("application %s: %w", appID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get application: %w", err)
	}
	return applicationFromModel(m), nil
}

func (s *Store) GetApplicationByName(ctx context.Context, name string) (*application.Application, error) {
	m := new(applicationModel)
	if err := s.pgdb.NewSelect(m).Where("name = ?", name).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("application %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get application by name: %w", err)
	}
	return applicationFromModel(m), nil
}

func (s *Store) UpdateApplication(ctx context.Context, a *application.Application) error {
	a.UpdatedAt = time.Now().UTC()
	res, err := s.pgdb.NewUpdate(applicationToModel(a)).WherePK().Exec(ctx)
	if err != nil {
		return mapWriteErr("update application", err)
	}
	return requireRow(res, "application "+a.ID.String())
}

func (s *Store) DeleteApplication(ctx context.Context, appID id.ApplicationID) error {
	res, err := s.pgdb.NewDelete((*applicationModel)(nil)).
		Where("id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete application: %w", err)
	}
	return requireRow(res, "application "+appID.String())
}

func (s *Store) ListApplications(ctx context.Context, filter *application.ListFilter) ([]*application.Application, error) {
	var models []applicationModel
	q := s.pgdb.NewSelect(&models).OrderExpr("name ASC")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list applications: %w", err)
	}
	result := make([]*application.Application, len(models))
	for i := range models {
		result[i] = applicationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateScope(ctx context.Context, sc *application.Scope) error {
	stamp(&sc.CreatedAt, &sc.UpdatedAt)
	if _, err := s.pgdb.NewInsert(scopeToModel(sc)).Exec(ctx); err != nil {
		return mapWriteErr("create scope", err)
	}
	return nil
}

func (s *Store) GetScopeByName(ctx context.Context, appID id.ApplicationID, name string) (*application.Scope, error) {
	m := new(scopeModel)
	err := s.pgdb.NewSelect(m).
		Where("app_id = ?", appID.String()).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("scope %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get scope by name: %w", err)
	}
	return scopeFromModel(m), nil
}

func (s *Store) ListScopes(ctx context.Context, appID id.ApplicationID) ([]*application.Scope, error) {
	var models []scopeModel
	err := s.pgdb.NewSelect(&models).
		Where("app_id = ?", appID.String()).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("azguard/postgres: list scopes: %w", err)
	}
	result := make([]*application.Scope, len(models))
	for i := range models {
		result[i] = scopeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	_, err := s.pgdb.NewDelete((*scopeModel)(nil)).
		Where("id = ?", scopeID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete scope: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Operation operations
// ──────────────────────────────────────────────────

func (s *Store) CreateOperation(ctx context.Context, o *operation.Operation) error {
	stamp(&o.CreatedAt, &o.UpdatedAt)
	if _, err := s.pgdb.NewInsert(operationToModel(o)).Exec(ctx); err != nil {
		return mapWriteErr("create operation", err)
	}
	return nil
}

func (s *Store) GetOperation(ctx context.Context, opID id.OperationID) (*operation.Operation, error) {
	m := new(operationModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", opID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("operation %s: %w", opID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get operation: %w", err)
	}
	return operationFromModel(m), nil
}

func (s *Store) GetOperationByName(ctx context.Context, appID id.ApplicationID, name string) (*operation.Operation, error) {
	m := new(operationModel)
	err := s.pgdb.NewSelect(m).
		Where("app_id = ?", appID.String()).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("operation %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get operation by name: %w", err)
	}
	return operationFromModel(m), nil
}

func (s *Store) UpdateOperation(ctx context.Context, o *operation.Operation) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := s.pgdb.NewUpdate(operationToModel(o)).WherePK().Exec(ctx)
	if err != nil {
		return mapWriteErr("update operation", err)
	}
	return requireRow(res, "operation "+o.ID.String())
}

func (s *Store) DeleteOperation(ctx context.Context, opID id.OperationID) error {
	res, err := s.pgdb.NewDelete((*operationModel)(nil)).
		Where("id = ?", opID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete operation: %w", err)
	}
	return requireRow(res, "operation "+opID.String())
}

func (s *Store) ListOperations(ctx context.Context, filter *operation.ListFilter) ([]*operation.Operation, error) {
	var models []operationModel
	q := s.pgdb.NewSelect(&models).OrderExpr("operation_id ASC")
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list operations: %w", err)
	}
	result := make([]*operation.Operation, len(models))
	for i := range models {
		result[i] = operationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountOperations(ctx context.Context, filter *operation.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*operationModel)(nil))
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: count operations: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteOperationsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.pgdb.NewDelete((*operationModel)(nil)).
		Where("app_id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete operations by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Task operations
// ──────────────────────────────────────────────────

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	stamp(&t.CreatedAt, &t.UpdatedAt)
	if _, err := s.pgdb.NewInsert(taskToModel(t)).Exec(ctx); err != nil {
		return mapWriteErr("create task", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, taskID id.TaskID) (*task.Task, error) {
	m := new(taskModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", taskID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get task: %w", err)
	}
	return taskFromModel(m), nil
}

func (s *Store) GetTaskByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*task.Task, error) {
	m := new(taskModel)
	err := s.pgdb.NewSelect(m).
		Where("app_id = ?", appID.String()).
		Where("scope = ?", scope).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("task %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get task by name: %w", err)
	}
	return taskFromModel(m), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.pgdb.NewUpdate(taskToModel(t)).WherePK().Exec(ctx)
	if err != nil {
		return mapWriteErr("update task", err)
	}
	return requireRow(res, "task "+t.ID.String())
}

func (s *Store) DeleteTask(ctx context.Context, taskID id.TaskID) error {
	res, err := s.pgdb.NewDelete((*taskModel)(nil)).
		Where("id = ?", taskID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete task: %w", err)
	}
	return requireRow(res, "task "+taskID.String())
}

func (s *Store) ListTasks(ctx context.Context, filter *task.ListFilter) ([]*task.Task, error) {
	var models []taskModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC, name ASC")
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Scope != nil {
			q = q.Where("scope = ?", *filter.Scope)
		}
		if filter.IsRoleDefinition != nil {
			q = q.Where("is_role_definition = ?", *filter.IsRoleDefinition)
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list tasks: %w", err)
	}
	result := make([]*task.Task, len(models))
	for i := range models {
		result[i] = taskFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountTasks(ctx context.Context, filter *task.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*taskModel)(nil))
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Scope != nil {
			q = q.Where("scope = ?", *filter.Scope)
		}
		if filter.IsRoleDefinition != nil {
			q = q.Where("is_role_definition = ?", *filter.IsRoleDefinition)
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: count tasks: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteTasksByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.pgdb.NewDelete((*taskModel)(nil)).
		Where("app_id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete tasks by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	stamp(&r.CreatedAt, &r.UpdatedAt)
	if _, err := s.pgdb.NewInsert(roleToModel(r)).Exec(ctx); err != nil {
		return mapWriteErr("create role", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	m := new(roleModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", roleID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get role: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*role.Role, error) {
	m := new(roleModel)
	err := s.pgdb.NewSelect(m).
		Where("app_id = ?", appID.String()).
		Where("scope = ?", scope).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("role %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get role by name: %w", err)
	}
	return roleFromModel(m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = time.Now().UTC()
	res, err := s.pgdb.NewUpdate(roleToModel(r)).WherePK().Exec(ctx)
	if err != nil {
		return mapWriteErr("update role", err)
	}
	return requireRow(res, "role "+r.ID.String())
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	res, err := s.pgdb.NewDelete((*roleModel)(nil)).
		Where("id = ?", roleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete role: %w", err)
	}
	return requireRow(res, "role "+roleID.String())
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC, name ASC")
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Scope != nil {
			q = q.Where("scope = ?", *filter.Scope)
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*roleModel)(nil))
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.Scope != nil {
			q = q.Where("scope = ?", *filter.Scope)
		}
		if filter.Search != "" {
			q = q.Where("name ILIKE ?", likeName(filter.Search))
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRolesByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.pgdb.NewDelete((*roleModel)(nil)).
		Where("app_id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete roles by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	stamp(&a.CreatedAt, nil)
	_, err := s.pgdb.NewInsert(assignmentToModel(a)).
		OnConflict("(role_id, sid) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, asgID id.AssignmentID) (*assignment.Assignment, error) {
	m := new(assignmentModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", asgID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("assignment %s: %w", asgID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get assignment: %w", err)
	}
	return assignmentFromModel(m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, asgID id.AssignmentID) error {
	res, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("id = ?", asgID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete assignment: %w", err)
	}
	return requireRow(res, "assignment "+asgID.String())
}

func (s *Store) DeleteMember(ctx context.Context, roleID id.RoleID, sid string) (bool, error) {
	res, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("role_id = ?", roleID.String()).
		Where("sid = ?", sid).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("azguard/postgres: delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("azguard/postgres: delete member rows: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC, sid ASC")
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.RoleID != nil {
			q = q.Where("role_id = ?", filter.RoleID.String())
		}
		if filter.SID != "" {
			q = q.Where("sid = ?", filter.SID)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	q := s.pgdb.NewSelect((*assignmentModel)(nil))
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.RoleID != nil {
			q = q.Where("role_id = ?", filter.RoleID.String())
		}
		if filter.SID != "" {
			q = q.Where("sid = ?", filter.SID)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: count assignments: %w", err)
	}
	return count, nil
}

func (s *Store) ListRoleMembers(ctx context.Context, roleID id.RoleID) ([]*assignment.Assignment, error) {
	return s.ListAssignments(ctx, &assignment.ListFilter{RoleID: &roleID})
}

func (s *Store) ListRolesForSIDs(ctx context.Context, appID id.ApplicationID, sids []string) ([]id.RoleID, error) {
	if len(sids) == 0 {
		return nil, nil
	}
	var models []assignmentModel
	err := s.pgdb.NewSelect(&models).
		Where("app_id = ?", appID.String()).
		Where("sid IN (?)", sids).
		OrderExpr("role_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("azguard/postgres: list roles for sids: %w", err)
	}
	seen := make(map[string]struct{}, len(models))
	var result []id.RoleID
	for _, m := range models {
		if _, ok := seen[m.RoleID]; ok {
			continue
		}
		seen[m.RoleID] = struct{}{}
		rid, err := id.ParseRoleID(m.RoleID)
		if err == nil {
			result = append(result, rid)
		}
	}
	return result, nil
}

func (s *Store) DeleteAssignmentsByRole(ctx context.Context, roleID id.RoleID) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("role_id = ?", roleID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete assignments by role: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.pgdb.NewDelete((*assignmentModel)(nil)).
		Where("app_id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete assignments by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	stamp(&e.CreatedAt, nil)
	if _, err := s.pgdb.NewInsert(checkLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("azguard/postgres: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	m := new(checkLogModel)
	if err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx); err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/postgres: get check log: %w", err)
	}
	return checkLogFromModel(m), nil
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.UserName != "" {
			q = q.Where("user_name = ?", filter.UserName)
		}
		if filter.AuditID != "" {
			q = q.Where("audit_id = ?", filter.AuditID)
		}
		if filter.Allowed != nil {
			q = q.Where("allowed = ?", *filter.Allowed)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/postgres: list check logs: %w", err)
	}
	result := make([]*checklog.Entry, len(models))
	for i := range models {
		result[i] = checkLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	q := s.pgdb.NewSelect((*checkLogModel)(nil))
	if filter != nil {
		if !filter.AppID.IsNil() {
			q = q.Where("app_id = ?", filter.AppID.String())
		}
		if filter.UserName != "" {
			q = q.Where("user_name = ?", filter.UserName)
		}
		if filter.AuditID != "" {
			q = q.Where("audit_id = ?", filter.AuditID)
		}
		if filter.Allowed != nil {
			q = q.Where("allowed = ?", *filter.Allowed)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: count check logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: purge check logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("azguard/postgres: purge check logs rows: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteCheckLogsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("app_id = ?", appID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/postgres: delete check logs by app: %w", err)
	}
	return nil
}
