package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/id"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

// SQLite has no array or JSON column type; slices and maps are stored as
// JSON text.

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fromJSON(s string, v any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), v)
}

// ──────────────────────────────────────────────────
// Application model
// ──────────────────────────────────────────────────

type applicationModel struct {
	grove.BaseModel `grove:"table:azguard_applications"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	Version         string    `grove:"version"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func applicationToModel(a *application.Application) (*applicationModel, error) {
	metadata, err := toJSON(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal application metadata: %w", err)
	}
	return &applicationModel{
		ID:          a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		Version:     a.Version,
		Metadata:    metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}, nil
}

func applicationFromModel(m *applicationModel) (*application.Application, error) {
	aid, _ := id.ParseApplicationID(m.ID) //nolint:errcheck // stored IDs are always valid
	a := &application.Application{
		ID:          aid,
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if err := fromJSON(m.Metadata, &a.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal application metadata: %w", err)
	}
	return a, nil
}

type scopeModel struct {
	grove.BaseModel `grove:"table:azguard_scopes"`
	ID              string    `grove:"id,pk"`
	AppID           string    `grove:"app_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func scopeToModel(sc *application.Scope) *scopeModel {
	return &scopeModel{
		ID:          sc.ID.String(),
		AppID:       sc.AppID.String(),
		Name:        sc.Name,
		Description: sc.Description,
		CreatedAt:   sc.CreatedAt,
		UpdatedAt:   sc.UpdatedAt,
	}
}

func scopeFromModel(m *scopeModel) *application.Scope {
	sid, _ := id.ParseScopeID(m.ID)         //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	return &application.Scope{
		ID:          sid,
		AppID:       aid,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Operation model
// ──────────────────────────────────────────────────

type operationModel struct {
	grove.BaseModel `grove:"table:azguard_operations"`
	ID              string    `grove:"id,pk"`
	AppID           string    `grove:"app_id,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	OperationID     int       `grove:"operation_id,notnull"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func operationToModel(o *operation.Operation) (*operationModel, error) {
	metadata, err := toJSON(o.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal operation metadata: %w", err)
	}
	return &operationModel{
		ID:          o.ID.String(),
		AppID:       o.AppID.String(),
		Name:        o.Name,
		Description: o.Description,
		OperationID: o.OperationID,
		Metadata:    metadata,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}, nil
}

func operationFromModel(m *operationModel) (*operation.Operation, error) {
	oid, _ := id.ParseOperationID(m.ID)      //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	o := &operation.Operation{
		ID:          oid,
		AppID:       aid,
		Name:        m.Name,
		Description: m.Description,
		OperationID: m.OperationID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if err := fromJSON(m.Metadata, &o.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal operation metadata: %w", err)
	}
	return o, nil
}

// ──────────────────────────────────────────────────
// Task model
// ──────────────────────────────────────────────────

type taskModel struct {
	grove.BaseModel  `grove:"table:azguard_tasks"`
	ID               string    `grove:"id,pk"`
	AppID            string    `grove:"app_id,notnull"`
	Scope            string    `grove:"scope,notnull"`
	Name             string    `grove:"name,notnull"`
	Description      string    `grove:"description"`
	BizRule          string    `grove:"biz_rule"`
	IsRoleDefinition bool      `grove:"is_role_definition,notnull"`
	Operations       string    `grove:"operations"` // JSON text
	Tasks            string    `grove:"tasks"`      // JSON text
	Metadata         string    `grove:"metadata"`   // JSON text
	CreatedAt        time.Time `grove:"created_at,notnull"`
	UpdatedAt        time.Time `grove:"updated_at,notnull"`
}

func taskToModel(t *task.Task) (*taskModel, error) {
	ops, err := toJSON(nonNil(t.Operations))
	if err != nil {
		return nil, fmt.Errorf("marshal task operations: %w", err)
	}
	tasks, err := toJSON(nonNil(t.Tasks))
	if err != nil {
		return nil, fmt.Errorf("marshal task tasks: %w", err)
	}
	metadata, err := toJSON(t.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal task metadata: %w", err)
	}
	return &taskModel{
		ID:               t.ID.String(),
		AppID:            t.AppID.String(),
		Scope:            t.Scope,
		Name:             t.Name,
		Description:      t.Description,
		BizRule:          t.BizRule,
		IsRoleDefinition: t.IsRoleDefinition,
		Operations:       ops,
		Tasks:            tasks,
		Metadata:         metadata,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}, nil
}

func taskFromModel(m *taskModel) (*task.Task, error) {
	tid, _ := id.ParseTaskID(m.ID)           //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	t := &task.Task{
		ID:               tid,
		AppID:            aid,
		Scope:            m.Scope,
		Name:             m.Name,
		Description:      m.Description,
		BizRule:          m.BizRule,
		IsRoleDefinition: m.IsRoleDefinition,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if err := fromJSON(m.Operations, &t.Operations); err != nil {
		return nil, fmt.Errorf("unmarshal task operations: %w", err)
	}
	if err := fromJSON(m.Tasks, &t.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal task tasks: %w", err)
	}
	if err := fromJSON(m.Metadata, &t.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal task metadata: %w", err)
	}
	return t, nil
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:azguard_roles"`
	ID              string    `grove:"id,pk"`
	AppID           string    `grove:"app_id,notnull"`
	Scope           string    `grove:"scope,notnull"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	Tasks           string    `grove:"tasks"`      // JSON text
	Operations      string    `grove:"operations"` // JSON text
	Metadata        string    `grove:"metadata"`   // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func roleToModel(r *role.Role) (*roleModel, error) {
	tasks, err := toJSON(nonNil(r.Tasks))
	if err != nil {
		return nil, fmt.Errorf("marshal role tasks: %w", err)
	}
	ops, err := toJSON(nonNil(r.Operations))
	if err != nil {
		return nil, fmt.Errorf("marshal role operations: %w", err)
	}
	metadata, err := toJSON(r.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal role metadata: %w", err)
	}
	return &roleModel{
		ID:          r.ID.String(),
		AppID:       r.AppID.String(),
		Scope:       r.Scope,
		Name:        r.Name,
		Description: r.Description,
		Tasks:       tasks,
		Operations:  ops,
		Metadata:    metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func roleFromModel(m *roleModel) (*role.Role, error) {
	rid, _ := id.ParseRoleID(m.ID)           //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	r := &role.Role{
		ID:          rid,
		AppID:       aid,
		Scope:       m.Scope,
		Name:        m.Name,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if err := fromJSON(m.Tasks, &r.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal role tasks: %w", err)
	}
	if err := fromJSON(m.Operations, &r.Operations); err != nil {
		return nil, fmt.Errorf("unmarshal role operations: %w", err)
	}
	if err := fromJSON(m.Metadata, &r.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal role metadata: %w", err)
	}
	return r, nil
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:azguard_assignments"`
	ID              string    `grove:"id,pk"`
	AppID           string    `grove:"app_id,notnull"`
	RoleID          string    `grove:"role_id,notnull"`
	SID             string    `grove:"sid,notnull"`
	MemberName      string    `grove:"member_name"`
	GrantedBy       string    `grove:"granted_by"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:         a.ID.String(),
		AppID:      a.AppID.String(),
		RoleID:     a.RoleID.String(),
		SID:        a.SID,
		MemberName: a.MemberName,
		GrantedBy:  a.GrantedBy,
		CreatedAt:  a.CreatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	asid, _ := id.ParseAssignmentID(m.ID)    //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	rid, _ := id.ParseRoleID(m.RoleID)       //nolint:errcheck // stored IDs are always valid
	return &assignment.Assignment{
		ID:         asid,
		AppID:      aid,
		RoleID:     rid,
		SID:        m.SID,
		MemberName: m.MemberName,
		GrantedBy:  m.GrantedBy,
		CreatedAt:  m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:azguard_check_logs"`
	ID              string    `grove:"id,pk"`
	AppID           string    `grove:"app_id,notnull"`
	AuditID         string    `grove:"audit_id,notnull"`
	UserName        string    `grove:"user_name,notnull"`
	UserSID         string    `grove:"user_sid"`
	Scope           string    `grove:"scope"`
	OperationIDs    string    `grove:"operation_ids"` // JSON text
	Results         string    `grove:"results"`       // JSON text
	Allowed         bool      `grove:"allowed,notnull"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	Params          string    `grove:"params"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) (*checkLogModel, error) {
	ops, err := toJSON(e.OperationIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal check log operations: %w", err)
	}
	results, err := toJSON(e.Results)
	if err != nil {
		return nil, fmt.Errorf("marshal check log results: %w", err)
	}
	params, err := toJSON(e.Params)
	if err != nil {
		return nil, fmt.Errorf("marshal check log params: %w", err)
	}
	return &checkLogModel{
		ID:           e.ID.String(),
		AppID:        e.AppID.String(),
		AuditID:      e.AuditID,
		UserName:     e.UserName,
		UserSID:      e.UserSID,
		Scope:        e.Scope,
		OperationIDs: ops,
		Results:      results,
		Allowed:      e.Allowed,
		EvalTimeNs:   e.EvalTimeNs,
		Params:       params,
		CreatedAt:    e.CreatedAt,
	}, nil
}

func checkLogFromModel(m *checkLogModel) (*checklog.Entry, error) {
	lid, _ := id.ParseCheckLogID(m.ID)       //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	e := &checklog.Entry{
		ID:         lid,
		AppID:      aid,
		AuditID:    m.AuditID,
		UserName:   m.UserName,
		UserSID:    m.UserSID,
		Scope:      m.Scope,
		Allowed:    m.Allowed,
		EvalTimeNs: m.EvalTimeNs,
		CreatedAt:  m.CreatedAt,
	}
	if err := fromJSON(m.OperationIDs, &e.OperationIDs); err != nil {
		return nil, fmt.Errorf("unmarshal check log operations: %w", err)
	}
	if err := fromJSON(m.Results, &e.Results); err != nil {
		return nil, fmt.Errorf("unmarshal check log results: %w", err)
	}
	if err := fromJSON(m.Params, &e.Params); err != nil {
		return nil, fmt.Errorf("unmarshal check log params: %w", err)
	}
	return e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
