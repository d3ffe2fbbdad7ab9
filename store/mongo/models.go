package mongo

import (
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

// ──────────────────────────────────────────────────
// Application and scope models
// ──────────────────────────────────────────────────

type applicationModel struct {
	grove.BaseModel `grove:"table:azguard_applications"`
	ID              string         `grove:"id,pk" bson:"_id"`
	Name            string         `grove:"name" bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	Version         string         `grove:"version" bson:"version"`
	Metadata        map[string]any `grove:"metadata" bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at" bson:"updated_at"`
}

func applicationToModel(a *application.Application) *applicationModel {
	return &applicationModel{
		ID:          a.ID.String(),
		Name:        a.Name,
		Description: a.Description,
		Version:     a.Version,
		Metadata:    a.Metadata,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func applicationFromModel(m *applicationModel) *application.Application {
	aid, _ := id.ParseApplicationID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &application.Application{
		ID:          aid,
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type scopeModel struct {
	grove.BaseModel `grove:"table:azguard_scopes"`
	ID              string    `grove:"id,pk" bson:"_id"`
	AppID           string    `grove:"app_id" bson:"app_id"`
	Name            string    `grove:"name" bson:"name"`
	Description     string    `grove:"description" bson:"description"`
	CreatedAt       time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at" bson:"updated_at"`
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
	ID              string         `grove:"id,pk" bson:"_id"`
	AppID           string         `grove:"app_id" bson:"app_id"`
	Name            string         `grove:"name" bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	OperationID     int            `grove:"operation_id" bson:"operation_id"`
	Metadata        map[string]any `grove:"metadata" bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at" bson:"updated_at"`
}

func operationToModel(o *operation.Operation) *operationModel {
	return &operationModel{
		ID:          o.ID.String(),
		AppID:       o.AppID.String(),
		Name:        o.Name,
		Description: o.Description,
		OperationID: o.OperationID,
		Metadata:    o.Metadata,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func operationFromModel(m *operationModel) *operation.Operation {
	oid, _ := id.ParseOperationID(m.ID)      //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	return &operation.Operation{
		ID:          oid,
		AppID:       aid,
		Name:        m.Name,
		Description: m.Description,
		OperationID: m.OperationID,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Task model
// ──────────────────────────────────────────────────

type taskModel struct {
	grove.BaseModel  `grove:"table:azguard_tasks"`
	ID               string         `grove:"id,pk" bson:"_id"`
	AppID            string         `grove:"app_id" bson:"app_id"`
	Scope            string         `grove:"scope" bson:"scope"`
	Name             string         `grove:"name" bson:"name"`
	Description      string         `grove:"description" bson:"description"`
	BizRule          string         `grove:"biz_rule" bson:"biz_rule"`
	IsRoleDefinition bool           `grove:"is_role_definition" bson:"is_role_definition"`
	Operations       []string       `grove:"operations" bson:"operations"`
	Tasks            []string       `grove:"tasks" bson:"tasks"`
	Metadata         map[string]any `grove:"metadata" bson:"metadata,omitempty"`
	CreatedAt        time.Time      `grove:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `grove:"updated_at" bson:"updated_at"`
}

func taskToModel(t *task.Task) *taskModel {
	return &taskModel{
		ID:               t.ID.String(),
		AppID:            t.AppID.String(),
		Scope:            t.Scope,
		Name:             t.Name,
		Description:      t.Description,
		BizRule:          t.BizRule,
		IsRoleDefinition: t.IsRoleDefinition,
		Operations:       nonNil(t.Operations),
		Tasks:            nonNil(t.Tasks),
		Metadata:         t.Metadata,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func taskFromModel(m *taskModel) *task.Task {
	tid, _ := id.ParseTaskID(m.ID)           //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	return &task.Task{
		ID:               tid,
		AppID:            aid,
		Scope:            m.Scope,
		Name:             m.Name,
		Description:      m.Description,
		BizRule:          m.BizRule,
		IsRoleDefinition: m.IsRoleDefinition,
		Operations:       m.Operations,
		Tasks:            m.Tasks,
		Metadata:         m.Metadata,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:azguard_roles"`
	ID              string         `grove:"id,pk" bson:"_id"`
	AppID           string         `grove:"app_id" bson:"app_id"`
	Scope           string         `grove:"scope" bson:"scope"`
	Name            string         `grove:"name" bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	Tasks           []string       `grove:"tasks" bson:"tasks"`
	Operations      []string       `grove:"operations" bson:"operations"`
	Metadata        map[string]any `grove:"metadata" bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at" bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at" bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	return &roleModel{
		ID:          r.ID.String(),
		AppID:       r.AppID.String(),
		Scope:       r.Scope,
		Name:        r.Name,
		Description: r.Description,
		Tasks:       nonNil(r.Tasks),
		Operations:  nonNil(r.Operations),
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID)           //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	return &role.Role{
		ID:          rid,
		AppID:       aid,
		Scope:       m.Scope,
		Name:        m.Name,
		Description: m.Description,
		Tasks:       m.Tasks,
		Operations:  m.Operations,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:azguard_assignments"`
	ID              string    `grove:"id,pk" bson:"_id"`
	AppID           string    `grove:"app_id" bson:"app_id"`
	RoleID          string    `grove:"role_id" bson:"role_id"`
	SID             string    `grove:"sid" bson:"sid"`
	MemberName      string    `grove:"member_name" bson:"member_name"`
	GrantedBy       string    `grove:"granted_by" bson:"granted_by"`
	CreatedAt       time.Time `grove:"created_at" bson:"created_at"`
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
	ID              string         `grove:"id,pk" bson:"_id"`
	AppID           string         `grove:"app_id" bson:"app_id"`
	AuditID         string         `grove:"audit_id" bson:"audit_id"`
	UserName        string         `grove:"user_name" bson:"user_name"`
	UserSID         string         `grove:"user_sid" bson:"user_sid"`
	Scope           string         `grove:"scope" bson:"scope"`
	OperationIDs    []int          `grove:"operation_ids" bson:"operation_ids"`
	Results         []int          `grove:"results" bson:"results"`
	Allowed         bool           `grove:"allowed" bson:"allowed"`
	EvalTimeNs      int64          `grove:"eval_time_ns" bson:"eval_time_ns"`
	Params          map[string]any `grove:"params" bson:"params,omitempty"`
	CreatedAt       time.Time      `grove:"created_at" bson:"created_at"`
}

func checkLogToModel(e *checklog.Entry) *checkLogModel {
	return &checkLogModel{
		ID:           e.ID.String(),
		AppID:        e.AppID.String(),
		AuditID:      e.AuditID,
		UserName:     e.UserName,
		UserSID:      e.UserSID,
		Scope:        e.Scope,
		OperationIDs: e.OperationIDs,
		Results:      e.Results,
		Allowed:      e.Allowed,
		EvalTimeNs:   e.EvalTimeNs,
		Params:       e.Params,
		CreatedAt:    e.CreatedAt,
	}
}

func checkLogFromModel(m *checkLogModel) *checklog.Entry {
	lid, _ := id.ParseCheckLogID(m.ID)       //nolint:errcheck // stored IDs are always valid
	aid, _ := id.ParseApplicationID(m.AppID) //nolint:errcheck // stored IDs are always valid
	return &checklog.Entry{
		ID:           lid,
		AppID:        aid,
		AuditID:      m.AuditID,
		UserName:     m.UserName,
		UserSID:      m.UserSID,
		Scope:        m.Scope,
		OperationIDs: m.OperationIDs,
		Results:      m.Results,
		Allowed:      m.Allowed,
		EvalTimeNs:   m.EvalTimeNs,
		Params:       m.Params,
		CreatedAt:    m.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
