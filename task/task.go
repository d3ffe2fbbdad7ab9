// Package task defines the Task entity and its store interface.
//
// A task bundles operations and nested tasks. A task flagged as a role
// definition describes what a role may do; roles reference tasks by name.
// BizRule is an optional expression evaluated against the contextual
// parameters of an access check; when it does not yield true the task
// grants nothing.
package task

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Task is a named bundle of operations and nested tasks.
type Task struct {
	ID               id.TaskID        `json:"id" db:"id"`
	AppID            id.ApplicationID `json:"app_id" db:"app_id"`
	Scope            string           `json:"scope,omitempty" db:"scope"`
	Name             string           `json:"name" db:"name"`
	Description      string           `json:"description,omitempty" db:"description"`
	BizRule          string           `json:"biz_rule,omitempty" db:"biz_rule"`
	IsRoleDefinition bool             `json:"is_role_definition" db:"is_role_definition"`
	Operations       []string         `json:"operations,omitempty" db:"operations"`
	Tasks            []string         `json:"tasks,omitempty" db:"tasks"`
	Metadata         map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing tasks. A nil Scope lists tasks of
// every scope; a pointer to "" lists application-level tasks only.
type ListFilter struct {
	AppID            id.ApplicationID `json:"app_id,omitempty"`
	Scope            *string          `json:"scope,omitempty"`
	IsRoleDefinition *bool            `json:"is_role_definition,omitempty"`
	Search           string           `json:"search,omitempty"`
	Limit            int              `json:"limit,omitempty"`
	Offset           int              `json:"offset,omitempty"`
}
