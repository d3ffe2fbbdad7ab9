// Package application defines policy applications and their scopes.
//
// An application is the top-level container of a policy store: operations,
// tasks and roles always belong to exactly one application. Scopes are named
// partitions inside an application; tasks and roles may live at the
// application level (empty scope) or inside one scope.
package application

import (
	"time"

	"github.com/xraph/azguard/id"
)

// Application is a named policy container.
type Application struct {
	ID          id.ApplicationID `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	Version     string           `json:"version,omitempty" db:"version"`
	Metadata    map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Scope is a named partition of an application.
type Scope struct {
	ID          id.ScopeID       `json:"id" db:"id"`
	AppID       id.ApplicationID `json:"app_id" db:"app_id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing applications.
type ListFilter struct {
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
