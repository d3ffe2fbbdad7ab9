package task

import (
	"context"

	"github.com/xraph/azguard/id"
)

// Store defines persistence operations for tasks.
type Store interface {
	// CreateTask persists a new task. Names are unique per application and scope.
	CreateTask(ctx context.Context, t *Task) error

	// GetTask retrieves a task by ID.
	GetTask(ctx context.Context, taskID id.TaskID) (*Task, error)

	// GetTaskByName retrieves a task by application, scope and name.
	GetTaskByName(ctx context.Context, appID id.ApplicationID, scope, name string) (*Task, error)

	// UpdateTask persists changes to a task.
	UpdateTask(ctx context.Context, t *Task) error

	// DeleteTask removes a task by ID.
	DeleteTask(ctx context.Context, taskID id.TaskID) error

	// ListTasks returns tasks matching the filter ordered by creation time.
	ListTasks(ctx context.Context, filter *ListFilter) ([]*Task, error)

	// CountTasks returns the number of tasks matching the filter.
	CountTasks(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteTasksByApp removes all tasks of an application.
	DeleteTasksByApp(ctx context.Context, appID id.ApplicationID) error
}
