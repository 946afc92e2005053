package store

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every ValidationError via errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports a request value that cannot be turned into a query.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Param names the offending field for problem documents.
func (e *ValidationError) Param() (name, reason string) {
	if e.Err == nil {
		return e.Field, "invalid value"
	}
	return e.Field, e.Err.Error()
}

// Is reports ErrInvalidInput so callers can classify without errors.As.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// QueryError wraps a failure returned by the database for a named operation.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

func queryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Op: op, Err: err}
}
