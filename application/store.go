package application

import (
	"context"

	"github.com/xraph/azguard/id"
)

// Store defines persistence operations for applications and scopes.
type Store interface {
	// CreateApplication persists a new application. Names are unique.
	CreateApplication(ctx context.Context, a *Application) error

	// GetApplication retrieves an application by ID.
	GetApplication(ctx context.Context, appID id.ApplicationID) (*Application, error)

	// GetApplicationByName retrieves an application by its unique name.
	GetApplicationByName(ctx context.Context, name string) (*Application, error)

	// UpdateApplication persists changes to an application.
	UpdateApplication(ctx context.Context, a *Application) error

	// DeleteApplication removes an application. Its scopes, operations,
	// tasks, roles and assignments are not removed; callers delete them
	// through the per-entity DeleteXByApp methods.
	DeleteApplication(ctx context.Context, appID id.ApplicationID) error

	// ListApplications returns applications ordered by name.
	ListApplications(ctx context.Context, filter *ListFilter) ([]*Application, error)

	// CreateScope persists a new scope. Names are unique per application.
	CreateScope(ctx context.Context, s *Scope) error

	// GetScopeByName retrieves a scope by application and name.
	GetScopeByName(ctx context.Context, appID id.ApplicationID, name string) (*Scope, error)

	// ListScopes returns all scopes of an application ordered by name.
	ListScopes(ctx context.Context, appID id.ApplicationID) ([]*Scope, error)

	// DeleteScope removes a scope by ID.
	DeleteScope(ctx context.Context, scopeID id.ScopeID) error
}
