package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation matches every *InvariantViolationError.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalid reports input the form layer would have rejected.
	ErrInvalid = errors.New("invalid input")
	// ErrNotFound is only returned where a missing parent makes a mutation
	// meaningless (e.g. adding a character to an unknown account); other
	// mutators treat unknown ids as no-ops.
	ErrNotFound = errors.New("not found")
)

// InvariantViolationError is a blocking, user-facing refusal. When it is
// returned nothing has been saved.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return e.Reason
}

func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

func violation(format string, args ...any) error {
	return &InvariantViolationError{Reason: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
