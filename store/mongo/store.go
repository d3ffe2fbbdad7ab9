// Package mongo provides a MongoDB implementation of the azguard composite
// store using grove's mongo driver. Migrate creates the collection indexes,
// including the unique indexes that back store.ErrDuplicate.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/store"
	"github.com/xraph/azguard/task"
)

// Collection name constants.
const (
	colApplications = "azguard_applications"
	colScopes       = "azguard_scopes"
	colOperations   = "azguard_operations"
	colTasks        = "azguard_tasks"
	colRoles        = "azguard_roles"
	colAssignments  = "azguard_assignments"
	colCheckLogs    = "azguard_check_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite azguard store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all azguard collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("azguard/mongo: migrate %s indexes: %w", col, err)
		}
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

func now() time.Time {
	return time.Now().UTC()
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// mapWriteErr turns a duplicate key error into store.ErrDuplicate and other
// server errors into a *store.Error carrying the server code.
func mapWriteErr(op string, err error) error {
	if mongod.IsDuplicateKeyError(err) {
		return fmt.Errorf("azguard/mongo: %s: %w", op, store.ErrDuplicate)
	}
	var cmdErr mongod.CommandError
	if errors.As(err, &cmdErr) {
		return &store.Error{
			Code:    strconv.Itoa(int(cmdErr.Code)),
			Message: "azguard/mongo: " + op + ": " + cmdErr.Message,
			Err:     err,
		}
	}
	var writeErr mongod.WriteException
	if errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0 {
		we := writeErr.WriteErrors[0]
		return &store.Error{
			Code:    strconv.Itoa(we.Code),
			Message: "azguard/mongo: " + op + ": " + we.Message,
			Err:     err,
		}
	}
	return fmt.Errorf("azguard/mongo: %s: %w", op, err)
}

// nameRegex matches names containing search, case-insensitively.
func nameRegex(search string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(search), "$options": "i"}
}

func createdRange(after, before *time.Time) bson.M {
	r := bson.M{}
	if after != nil {
		r["$gt"] = *after
	}
	if before != nil {
		r["$lt"] = *before
	}
	return r
}

func migrationIndexes() map[string][]mongod.IndexModel {
	unique := func(keys ...string) mongod.IndexModel {
		d := make(bson.D, len(keys))
		for i, k := range keys {
			d[i] = bson.E{Key: k, Value: 1}
		}
		return mongod.IndexModel{Keys: d, Options: options.Index().SetUnique(true)}
	}
	return map[string][]mongod.IndexModel{
		colApplications: {unique("name")},
		colScopes:       {unique("app_id", "name")},
		colOperations: {
			unique("app_id", "name"),
			unique("app_id", "operation_id"),
		},
		colTasks: {
			unique("app_id", "scope", "name"),
			{Keys: bson.D{{Key: "app_id", Value: 1}, {Key: "is_role_definition", Value: 1}}},
		},
		colRoles: {unique("app_id", "scope", "name")},
		colAssignments: {
			unique("role_id", "sid"),
			{Keys: bson.D{{Key: "app_id", Value: 1}, {Key: "sid", Value: 1}}},
		},
		colCheckLogs: {
			{Keys: bson.D{{Key: "app_id", Value: 1}, {Key: "user_name", Value: 1}}},
			{Keys: bson.D{{Key: "audit_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Application operations
// ──────────────────────────────────────────────────

func (s *Store) CreateApplication(ctx context.Context, a *application.Application) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
		a.UpdatedAt = a.CreatedAt
	}
	if _, err := s.mdb.NewInsert(applicationToModel(a)).Exec(ctx); err != nil {
		return mapWriteErr("create application", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, appID id.ApplicationID) (*application.Application, error) {
	var m applicationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": appID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("application %s: %w", appID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get application: %w", err)
	}
	return applicationFromModel(&m), nil
}

func (s *Store) GetApplicationByName(ctx context.Context, name string) (*application.Application, error) {
	var m applicationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("application %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get application by name: %w", err)
	}
	return applicationFromModel(&m), nil
}

func (s *Store) UpdateApplication(ctx context.Context, a *application.Application) error {
	a.UpdatedAt = now()
	m := applicationToModel(a)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return mapWriteErr("update application", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("application %s: %w", a.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteApplication(ctx context.Context, appID id.ApplicationID) error {
	res, err := s.mdb.NewDelete((*applicationModel)(nil)).
		Filter(bson.M{"_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete application: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("application %s: %w", appID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListApplications(ctx context.Context, filter *application.ListFilter) ([]*application.Application, error) {
	var models []applicationModel
	f := bson.M{}
	if filter != nil && filter.Search != "" {
		f["name"] = nameRegex(filter.Search)
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list applications: %w", err)
	}
	result := make([]*application.Application, len(models))
	for i := range models {
		result[i] = applicationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CreateScope(ctx context.Context, sc *application.Scope) error {
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = now()
		sc.UpdatedAt = sc.CreatedAt
	}
	if _, err := s.mdb.NewInsert(scopeToModel(sc)).Exec(ctx); err != nil {
		return mapWriteErr("create scope", err)
	}
	return nil
}

func (s *Store) GetScopeByName(ctx context.Context, appID id.ApplicationID, name string) (*application.Scope, error) {
	var m scopeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"app_id": appID.String(), "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("scope %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get scope by name: %w", err)
	}
	return scopeFromModel(&m), nil
}

func (s *Store) ListScopes(ctx context.Context, appID id.ApplicationID) ([]*application.Scope, error) {
	var models []scopeModel
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"app_id": appID.String()}).
		Sort(bson.D{{Key: "name", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list scopes: %w", err)
	}
	result := make([]*application.Scope, len(models))
	for i := range models {
		result[i] = scopeFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) DeleteScope(ctx context.Context, scopeID id.ScopeID) error {
	_, err := s.mdb.NewDelete((*scopeModel)(nil)).
		Filter(bson.M{"_id": scopeID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete scope: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Operation operations
// ──────────────────────────────────────────────────

func (s *Store) CreateOperation(ctx context.Context, o *operation.Operation) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now()
		o.UpdatedAt = o.CreatedAt
	}
	if _, err := s.mdb.NewInsert(operationToModel(o)).Exec(ctx); err != nil {
		return mapWriteErr("create operation", err)
	}
	return nil
}

func (s *Store) GetOperation(ctx context.Context, opID id.OperationID) (*operation.Operation, error) {
	var m operationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": opID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("operation %s: %w", opID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get operation: %w", err)
	}
	return operationFromModel(&m), nil
}

func (s *Store) GetOperationByName(ctx context.Context, appID id.ApplicationID, name string) (*operation.Operation, error) {
	var m operationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"app_id": appID.String(), "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("operation %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get operation by name: %w", err)
	}
	return operationFromModel(&m), nil
}

func (s *Store) UpdateOperation(ctx context.Context, o *operation.Operation) error {
	o.UpdatedAt = now()
	m := operationToModel(o)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return mapWriteErr("update operation", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("operation %s: %w", o.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteOperation(ctx context.Context, opID id.OperationID) error {
	res, err := s.mdb.NewDelete((*operationModel)(nil)).
		Filter(bson.M{"_id": opID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete operation: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("operation %s: %w", opID, store.ErrNotFound)
	}
	return nil
}

func operationFilter(filter *operation.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if !filter.AppID.IsNil() {
		f["app_id"] = filter.AppID.String()
	}
	if filter.Search != "" {
		f["name"] = nameRegex(filter.Search)
	}
	return f
}

func (s *Store) ListOperations(ctx context.Context, filter *operation.ListFilter) ([]*operation.Operation, error) {
	var models []operationModel
	q := s.mdb.NewFind(&models).
		Filter(operationFilter(filter)).
		Sort(bson.D{{Key: "operation_id", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list operations: %w", err)
	}
	result := make([]*operation.Operation, len(models))
	for i := range models {
		result[i] = operationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountOperations(ctx context.Context, filter *operation.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*operationModel)(nil)).
		Filter(operationFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: count operations: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteOperationsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.mdb.NewDelete((*operationModel)(nil)).
		Many().
		Filter(bson.M{"app_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete operations by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Task operations
// ──────────────────────────────────────────────────

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
		t.UpdatedAt = t.CreatedAt
	}
	if _, err := s.mdb.NewInsert(taskToModel(t)).Exec(ctx); err != nil {
		return mapWriteErr("create task", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, taskID id.TaskID) (*task.Task, error) {
	var m taskModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": taskID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get task: %w", err)
	}
	return taskFromModel(&m), nil
}

func (s *Store) GetTaskByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*task.Task, error) {
	var m taskModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"app_id": appID.String(), "scope": scope, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("task %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get task by name: %w", err)
	}
	return taskFromModel(&m), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	t.UpdatedAt = now()
	m := taskToModel(t)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return mapWriteErr("update task", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("task %s: %w", t.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, taskID id.TaskID) error {
	res, err := s.mdb.NewDelete((*taskModel)(nil)).
		Filter(bson.M{"_id": taskID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete task: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	}
	return nil
}

func taskFilter(filter *task.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if !filter.AppID.IsNil() {
		f["app_id"] = filter.AppID.String()
	}
	if filter.Scope != nil {
		f["scope"] = *filter.Scope
	}
	if filter.IsRoleDefinition != nil {
		f["is_role_definition"] = *filter.IsRoleDefinition
	}
	if filter.Search != "" {
		f["name"] = nameRegex(filter.Search)
	}
	return f
}

func (s *Store) ListTasks(ctx context.Context, filter *task.ListFilter) ([]*task.Task, error) {
	var models []taskModel
	q := s.mdb.NewFind(&models).
		Filter(taskFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list tasks: %w", err)
	}
	result := make([]*task.Task, len(models))
	for i := range models {
		result[i] = taskFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountTasks(ctx context.Context, filter *task.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*taskModel)(nil)).
		Filter(taskFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: count tasks: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteTasksByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.mdb.NewDelete((*taskModel)(nil)).
		Many().
		Filter(bson.M{"app_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete tasks by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Role operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(ctx context.Context, r *role.Role) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
		r.UpdatedAt = r.CreatedAt
	}
	if _, err := s.mdb.NewInsert(roleToModel(r)).Exec(ctx); err != nil {
		return mapWriteErr("create role", err)
	}
	return nil
}

func (s *Store) GetRole(ctx context.Context, roleID id.RoleID) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": roleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get role: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) GetRoleByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*role.Role, error) {
	var m roleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"app_id": appID.String(), "scope": scope, "name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("role %q: %w", name, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get role by name: %w", err)
	}
	return roleFromModel(&m), nil
}

func (s *Store) UpdateRole(ctx context.Context, r *role.Role) error {
	r.UpdatedAt = now()
	m := roleToModel(r)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return mapWriteErr("update role", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("role %s: %w", r.ID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteRole(ctx context.Context, roleID id.RoleID) error {
	res, err := s.mdb.NewDelete((*roleModel)(nil)).
		Filter(bson.M{"_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete role: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("role %s: %w", roleID, store.ErrNotFound)
	}
	return nil
}

func roleFilter(filter *role.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if !filter.AppID.IsNil() {
		f["app_id"] = filter.AppID.String()
	}
	if filter.Scope != nil {
		f["scope"] = *filter.Scope
	}
	if filter.Search != "" {
		f["name"] = nameRegex(filter.Search)
	}
	return f
}

func (s *Store) ListRoles(ctx context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	var models []roleModel
	q := s.mdb.NewFind(&models).
		Filter(roleFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "name", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list roles: %w", err)
	}
	result := make([]*role.Role, len(models))
	for i := range models {
		result[i] = roleFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*roleModel)(nil)).
		Filter(roleFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: count roles: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteRolesByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.mdb.NewDelete((*roleModel)(nil)).
		Many().
		Filter(bson.M{"app_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete roles by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment operations
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(ctx context.Context, a *assignment.Assignment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	if _, err := s.mdb.NewInsert(assignmentToModel(a)).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return nil // already a member
		}
		return mapWriteErr("create assignment", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, asgID id.AssignmentID) (*assignment.Assignment, error) {
	var m assignmentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": asgID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("assignment %s: %w", asgID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get assignment: %w", err)
	}
	return assignmentFromModel(&m), nil
}

func (s *Store) DeleteAssignment(ctx context.Context, asgID id.AssignmentID) error {
	res, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Filter(bson.M{"_id": asgID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete assignment: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("assignment %s: %w", asgID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, roleID id.RoleID, sid string) (bool, error) {
	res, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Filter(bson.M{"role_id": roleID.String(), "sid": sid}).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("azguard/mongo: delete member: %w", err)
	}
	return res.DeletedCount() > 0, nil
}

func assignmentFilter(filter *assignment.ListFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if !filter.AppID.IsNil() {
		f["app_id"] = filter.AppID.String()
	}
	if filter.RoleID != nil {
		f["role_id"] = filter.RoleID.String()
	}
	if filter.SID != "" {
		f["sid"] = filter.SID
	}
	return f
}

func (s *Store) ListAssignments(ctx context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	var models []assignmentModel
	q := s.mdb.NewFind(&models).
		Filter(assignmentFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}, {Key: "sid", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list assignments: %w", err)
	}
	result := make([]*assignment.Assignment, len(models))
	for i := range models {
		result[i] = assignmentFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	count, err := s.mdb.NewFind((*assignmentModel)(nil)).
		Filter(assignmentFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: count assignments: %w", err)
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
	if err := s.mdb.NewFind(&models).
		Filter(bson.M{"app_id": appID.String(), "sid": bson.M{"$in": sids}}).
		Sort(bson.D{{Key: "role_id", Value: 1}}).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list roles for sids: %w", err)
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
	_, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Many().
		Filter(bson.M{"role_id": roleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete assignments by role: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignmentsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.mdb.NewDelete((*assignmentModel)(nil)).
		Many().
		Filter(bson.M{"app_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete assignments by app: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	if _, err := s.mdb.NewInsert(checkLogToModel(e)).Exec(ctx); err != nil {
		return fmt.Errorf("azguard/mongo: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	var m checkLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("check log %s: %w", logID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("azguard/mongo: get check log: %w", err)
	}
	return checkLogFromModel(&m), nil
}

func checkLogFilter(filter *checklog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if !filter.AppID.IsNil() {
		f["app_id"] = filter.AppID.String()
	}
	if filter.UserName != "" {
		f["user_name"] = filter.UserName
	}
	if filter.AuditID != "" {
		f["audit_id"] = filter.AuditID
	}
	if filter.Allowed != nil {
		f["allowed"] = *filter.Allowed
	}
	if filter.After != nil || filter.Before != nil {
		f["created_at"] = createdRange(filter.After, filter.Before)
	}
	return f
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.mdb.NewFind(&models).
		Filter(checkLogFilter(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("azguard/mongo: list check logs: %w", err)
	}
	result := make([]*checklog.Entry, len(models))
	for i := range models {
		result[i] = checkLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	count, err := s.mdb.NewFind((*checkLogModel)(nil)).
		Filter(checkLogFilter(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: count check logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("azguard/mongo: purge check logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteCheckLogsByApp(ctx context.Context, appID id.ApplicationID) error {
	_, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"app_id": appID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("azguard/mongo: delete check logs by app: %w", err)
	}
	return nil
}
