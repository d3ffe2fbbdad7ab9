// Package role defines the Role entity and its store interface.
//
// A role grants tasks and operations, referenced by name, to its members.
// Membership is stored separately as assignments keyed by SID.
package role

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Role is a named grant of tasks and operations.
type Role struct {
	ID          id.RoleID        `json:"id" db:"id"`
	AppID       id.ApplicationID `json:"app_id" db:"app_id"`
	Scope       string           `json:"scope,omitempty" db:"scope"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	Tasks       []string         `json:"tasks,omitempty" db:"tasks"`
	Operations  []string         `json:"operations,omitempty" db:"operations"`
	Metadata    map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing roles. Scope follows the same
// convention as task.ListFilter.
type ListFilter struct {
	AppID  id.ApplicationID `json:"app_id,omitempty"`
	Scope  *string          `json:"scope,omitempty"`
	Search string           `json:"search,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}
