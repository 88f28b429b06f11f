package appointments

import (
	"errors"
	"fmt"
	"strings"
)

// Op names the cache operation that failed.
type Op string

const (
	OpFetch  Op = "fetch"
	OpGet    Op = "get"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ErrNotFound is returned by stores when the referenced appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// ValidationError reports required fields that were missing before any network call.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// OperationError wraps a remote rejection or transport failure. Its Error text is
// what gets surfaced to the user, so it keeps the underlying message.
type OperationError struct {
	Op  Op
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s appointment: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// IsOp reports whether err is an OperationError for op.
func IsOp(err error, op Op) bool {
	var opErr *OperationError
	return errors.As(err, &opErr) && opErr.Op == op
}

// StatusError is returned by the HTTP store for any non-2xx answer.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("record store returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("record store returned status %d: %s", e.StatusCode, e.Message)
}
