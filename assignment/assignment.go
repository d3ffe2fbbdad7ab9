// Package assignment defines role membership: the binding of a role to a
// member SID. The SID may belong to a user or a group.
package assignment

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Assignment binds a role to a member SID. MemberName is the directory name
// recorded when the member was added; it is informational and may go stale.
type Assignment struct {
	ID         id.AssignmentID  `json:"id" db:"id"`
	AppID      id.ApplicationID `json:"app_id" db:"app_id"`
	RoleID     id.RoleID        `json:"role_id" db:"role_id"`
	SID        string           `json:"sid" db:"sid"`
	MemberName string           `json:"member_name,omitempty" db:"member_name"`
	GrantedBy  string           `json:"granted_by,omitempty" db:"granted_by"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}

// ListFilter contains filters for listing assignments.
type ListFilter struct {
	AppID  id.ApplicationID `json:"app_id,omitempty"`
	RoleID *id.RoleID       `json:"role_id,omitempty"`
	SID    string           `json:"sid,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}
