package operation

import (
	"context"

	"github.com/xraph/azguard/id"
)

// Store defines persistence operations for operations.
type Store interface {
	// CreateOperation persists a new operation. Name and OperationID are
	// unique per application.
	CreateOperation(ctx context.Context, o *Operation) error

	// GetOperation retrieves an operation by ID.
	GetOperation(ctx context.Context, opID id.OperationID) (*Operation, error)

	// GetOperationByName retrieves an operation by application and name.
	GetOperationByName(ctx context.Context, appID id.ApplicationID, name string) (*Operation, error)

	// UpdateOperation persists changes to an operation.
	UpdateOperation(ctx context.Context, o *Operation) error

	// DeleteOperation removes an operation by ID.
	DeleteOperation(ctx context.Context, opID id.OperationID) error

	// ListOperations returns operations matching the filter.
	ListOperations(ctx context.Context, filter *ListFilter) ([]*Operation, error)

	// CountOperations returns the number of operations matching the filter.
	CountOperations(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteOperationsByApp removes all operations of an application.
	DeleteOperationsByApp(ctx context.Context, appID id.ApplicationID) error
}
