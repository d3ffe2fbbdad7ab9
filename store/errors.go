package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every backend when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is wrapped by every backend on a unique constraint violation.
	ErrDuplicate = errors.New("already exists")
)

// Error carries a backend-specific error code, such as a Postgres SQLSTATE
// or a Mongo server error code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (code %s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }
