// Package operation defines the Operation entity and its store interface.
//
// An operation is the finest-grained permission unit. Besides its stored
// ID it carries a numeric OperationID, unique within the application, which
// is what access checks are evaluated against.
package operation

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Operation is a single permission unit of an application.
type Operation struct {
	ID          id.OperationID   `json:"id" db:"id"`
	AppID       id.ApplicationID `json:"app_id" db:"app_id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	OperationID int              `json:"operation_id" db:"operation_id"`
	Metadata    map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing operations. Results are ordered
// by OperationID.
type ListFilter struct {
	AppID  id.ApplicationID `json:"app_id,omitempty"`
	Search string           `json:"search,omitempty"`
	Limit  int              `json:"limit,omitempty"`
	Offset int              `json:"offset,omitempty"`
}
