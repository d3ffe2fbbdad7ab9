package azguard

import (
	"errors"
	"fmt"

	"github.com/xraph/azguard/store"
)

var (
	// ErrPrincipalNotFound is returned when the directory has no entry for a user.
	ErrPrincipalNotFound = errors.New("azguard: principal not found")

	// ErrStoreUnavailable is returned when the policy store cannot be opened
	// or the application is not registered.
	ErrStoreUnavailable = errors.New("azguard: policy store unavailable")

	// ErrScopeNotFound is returned when the configured scope does not exist.
	ErrScopeNotFound = errors.New("azguard: scope not found")

	// ErrRoleNotFound is returned when a named role does not exist.
	ErrRoleNotFound = errors.New("azguard: role does not exist")

	// ErrOperationNotFound is returned when a named or numbered operation does not exist.
	ErrOperationNotFound = errors.New("azguard: operation does not exist")

	// ErrTaskNotFound is returned when a named task does not exist.
	ErrTaskNotFound = errors.New("azguard: task does not exist")

	// ErrRoleExists is returned by CreateRole for an existing role.
	ErrRoleExists = errors.New("azguard: role already exists")

	// ErrOperationExists is returned when an operation name or number is taken.
	ErrOperationExists = errors.New("azguard: operation already exists")

	// ErrTaskExists is returned when a task name is taken in its scope.
	ErrTaskExists = errors.New("azguard: task already exists")

	// ErrScopeExists is returned when a scope name is taken.
	ErrScopeExists = errors.New("azguard: scope already exists")

	// ErrRolePopulated is returned by DeleteRole when the role still has members.
	ErrRolePopulated = errors.New("azguard: role has members")

	// ErrInvalidParameter is returned when an argument fails validation.
	ErrInvalidParameter = errors.New("azguard: invalid parameter")

	// ErrInvalidBizRule is returned when a task business rule cannot be compiled or run.
	ErrInvalidBizRule = errors.New("azguard: invalid business rule")

	// ErrHandleClosed is returned when a closed Handle is used.
	ErrHandleClosed = errors.New("azguard: policy store handle closed")
)

// BackendError wraps a failed policy store call. Code carries the backend's
// own error code when it exposes one (a Postgres SQLSTATE, a Mongo server
// code) and is empty otherwise.
type BackendError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("azguard: policy backend: %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("azguard: policy backend: %s: %s (code %s)", e.Op, e.Message, e.Code)
}

func (e *BackendError) Unwrap() error { return e.Err }

func backendError(op string, err error) error {
	if err == nil {
		return nil
	}
	be := &BackendError{Op: op, Message: err.Error(), Err: err}
	var se *store.Error
	if errors.As(err, &se) {
		be.Code = se.Code
		be.Message = se.Message
	}
	return be
}
