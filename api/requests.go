package api

// ──────────────────────────────────────────────────
// Shared
// ──────────────────────────────────────────────────

// ClientParams carries the contextual parameters of the user a caller is
// checking on behalf of. They feed business rules.
type ClientParams struct {
	IP     string `json:"ip,omitempty" query:"ip" description:"Client IP address of the user"`
	Secure bool   `json:"secure,omitempty" query:"secure" description:"Whether the user's connection is secure"`
}

// ──────────────────────────────────────────────────
// Authorization requests
// ──────────────────────────────────────────────────

// AuthorizeRequest is the request body for an authorization context check.
type AuthorizeRequest struct {
	User    string `json:"user" description:"User name to resolve in the directory"`
	Context string `json:"context" description:"O:<operation> or a task name"`
	Scope   string `json:"scope,omitempty" description:"Scope override; - for the application level"`
	ClientParams
}

// UserRequest addresses a user for aggregate queries.
type UserRequest struct {
	User  string `path:"user" description:"User name"`
	Scope string `query:"scope" description:"Scope override; - for the application level"`
	ClientParams
}

// UserOperationRequest addresses one operation of a user.
type UserOperationRequest struct {
	User      string `path:"user" description:"User name"`
	Operation string `path:"operation" description:"Operation name"`
	Scope     string `query:"scope" description:"Scope override; - for the application level"`
}

// UserTaskRequest addresses one task of a user.
type UserTaskRequest struct {
	User  string `path:"user" description:"User name"`
	Task  string `path:"task" description:"Task name"`
	Scope string `query:"scope" description:"Scope override; - for the application level"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// ScopeQuery selects the scope of a role or task request.
type ScopeQuery struct {
	Scope string `query:"scope" description:"Scope override; - for the application level"`
}

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name  string `json:"name" description:"Role name"`
	Scope string `json:"scope,omitempty" description:"Scope override; - for the application level"`
}

// RoleRequest is the path parameter for a role.
type RoleRequest struct {
	Role  string `path:"role" description:"Role name"`
	Scope string `query:"scope" description:"Scope override; - for the application level"`
}

// DeleteRoleRequest holds the parameters for deleting a role.
type DeleteRoleRequest struct {
	Role             string `path:"role" description:"Role name"`
	Scope            string `query:"scope" description:"Scope override; - for the application level"`
	ThrowOnPopulated bool   `query:"throw_on_populated" description:"Refuse to delete a role that has members"`
}

// RoleMemberRequest addresses one member of a role.
type RoleMemberRequest struct {
	Role  string `path:"role" description:"Role name"`
	User  string `path:"user" description:"User name"`
	Scope string `query:"scope" description:"Scope override; - for the application level"`
}

// MembershipRequest is the body for adding or removing role members.
type MembershipRequest struct {
	Users []string `json:"users" description:"User names to resolve in the directory"`
	Roles []string `json:"roles" description:"Role names"`
	Scope string   `json:"scope,omitempty" description:"Scope override; - for the application level"`
}

// GrantRequest is the body for granting or revoking role grants.
type GrantRequest struct {
	Tasks      []string `json:"tasks,omitempty" description:"Task names"`
	Operations []string `json:"operations,omitempty" description:"Operation names"`
	Scope      string   `json:"scope,omitempty" description:"Scope override; - for the application level"`
}

// ──────────────────────────────────────────────────
// Policy requests
// ──────────────────────────────────────────────────

// CreateOperationRequest is the body for defining an operation.
type CreateOperationRequest struct {
	Name        string         `json:"name" description:"Operation name"`
	OperationID int            `json:"operation_id" description:"Numeric operation id, unique in the application"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// OperationRequest is the path parameter for an operation.
type OperationRequest struct {
	Operation string `path:"operation" description:"Operation name"`
}

// ListOperationsRequest holds query parameters for listing operations.
type ListOperationsRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// CreateTaskRequest is the body for defining a task.
type CreateTaskRequest struct {
	Name        string         `json:"name" description:"Task name"`
	Scope       string         `json:"scope,omitempty" description:"Scope override; - for the application level"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	BizRule     string         `json:"biz_rule,omitempty" description:"Business rule expression over the check parameters"`
	Operations  []string       `json:"operations,omitempty" description:"Operation names"`
	Tasks       []string       `json:"tasks,omitempty" description:"Nested task names"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// TaskRequest is the path parameter for a task.
type TaskRequest struct {
	Task  string `path:"task" description:"Task name"`
	Scope string `query:"scope" description:"Scope override; - for the application level"`
}

// ListTasksRequest holds query parameters for listing tasks.
type ListTasksRequest struct {
	Scope           string `query:"scope" description:"Only tasks of this scope; - for the application level"`
	RoleDefinitions *bool  `query:"role_definitions" description:"Filter on the role definition flag"`
	Search          string `query:"search" description:"Search by name"`
	Limit           int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset          int    `query:"offset" description:"Results to skip"`
}

// ListRolesRequest holds query parameters for listing stored roles.
type ListRolesRequest struct {
	Scope  string `query:"scope" description:"Only roles of this scope; - for the application level"`
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Scope requests
// ──────────────────────────────────────────────────

// CreateScopeRequest is the body for creating a scope.
type CreateScopeRequest struct {
	Name        string `json:"name" description:"Scope name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// ScopeRequest is the path parameter for a scope.
type ScopeRequest struct {
	Scope string `path:"scope" description:"Scope name"`
}

// ──────────────────────────────────────────────────
// Check log requests
// ──────────────────────────────────────────────────

// ListCheckLogsRequest holds query parameters for querying check logs.
type ListCheckLogsRequest struct {
	User    string `query:"user" description:"Filter by user name"`
	AuditID string `query:"audit_id" description:"Filter by audit identifier"`
	Allowed *bool  `query:"allowed" description:"Filter by outcome"`
	After   string `query:"after" description:"Only entries after this RFC3339 time"`
	Before  string `query:"before" description:"Only entries before this RFC3339 time"`
	Limit   int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset  int    `query:"offset" description:"Results to skip"`
}
