package auth

import "errors"

var (
	ErrNoPermissionsGiven = errors.New("permission check requires at least one permission code")
	ErrUnknownPermission  = errors.New("unknown permission code")
	ErrBatchTooLarge      = errors.New("batch exceeds maximum item count")
	ErrRoleNotFound       = errors.New("role not found")
)
