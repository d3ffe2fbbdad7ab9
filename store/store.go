// Package store defines the aggregate persistence interface. Each entity
// package (application, operation, task, role, assignment, checklog)
// defines its own store interface; the composite Store embeds them all.
// Backends: memory, sqlite, postgres and mongo.
package store

import (
	"context"

	"github.com/xraph/azguard/application"
	"github.com/xraph/azguard/assignment"
	"github.com/xraph/azguard/checklog"
	"github.com/xraph/azguard/operation"
	"github.com/xraph/azguard/role"
	"github.com/xraph/azguard/task"
)

// Store is the aggregate persistence interface. A single backend
// implements every entity store.
type Store interface {
	application.Store
	operation.Store
	task.Store
	role.Store
	assignment.Store
	checklog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
