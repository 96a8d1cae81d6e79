package pools

import "errors"

// Error kinds surfaced by the registry and workflow. Handlers match with
// errors.Is and map each kind to its own HTTP status and code, so clients can
// always tell a full pool from a duplicate request from a permission problem.
var (
	ErrValidation          = errors.New("validation error")
	ErrNotAuthorized       = errors.New("authorization error")
	ErrConflict            = errors.New("conflict")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrNotFound            = errors.New("not found")
	ErrOperationNotAllowed = errors.New("operation not allowed")
)
