package sqlbridge

import (
	"errors"
	"fmt"
)

// ErrInvalidContext is returned when a connection context is malformed,
// typically a nil Conn or one constructed without a handle. It indicates
// a programming error upstream and is never retried.
var ErrInvalidContext = errors.New("sqlbridge: invalid connection context")

// UnsupportedOperationError is returned by Evaluate when a statement's
// operation kind is outside the dispatcher's known set. New kinds from a
// builder must be added to the dispatch table explicitly; an unknown kind
// is a configuration error, never a silent default.
type UnsupportedOperationError struct {
	Kind OpKind
}

// Error returns the error string.
func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("sqlbridge: unsupported operation kind %q", string(e.Kind))
}

// IsUnsupportedOperation returns true if the error is an UnsupportedOperationError.
func IsUnsupportedOperation(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedOperationError
	return errors.As(err, &e)
}

// IsInvalidContext returns true if the error reports a malformed
// connection context.
func IsInvalidContext(err error) bool {
	return errors.Is(err, ErrInvalidContext)
}
