// Package errors defines the error kinds of the user domain. Handlers map
// them to HTTP status codes with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Kind sentinels. Every error returned by the domain service wraps exactly
// one of these.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInternal         = errors.New("internal fault")
)

// InvalidArgument marks structurally incomplete or malformed caller input.
func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// NotFound marks a referenced entity that does not exist.
func NotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

// PermissionDenied marks an issuer lacking the required role.
func PermissionDenied(msg string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
}

// Internal wraps an unexpected dependency failure. The cause stays in the
// error chain for server-side diagnostics; callers surface only the kind.
func Internal(msg string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrInternal, msg)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, msg, cause)
}
