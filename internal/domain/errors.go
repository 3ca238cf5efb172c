package domain

import (
	"errors"
	"fmt"
)

// ErrIndexUnavailable matches any backend failure via errors.Is.
var ErrIndexUnavailable = errors.New("search index unavailable")

// ValidationError rejects malformed input before it reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IndexError wraps a backend failure with the operation that produced it.
// It satisfies errors.Is(err, ErrIndexUnavailable) while keeping the cause
// reachable through Unwrap.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("search index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

func (e *IndexError) Is(target error) bool { return target == ErrIndexUnavailable }

// Unavailable wraps err as an IndexError for the given operation.
func Unavailable(op string, err error) error {
	return &IndexError{Op: op, Err: err}
}
