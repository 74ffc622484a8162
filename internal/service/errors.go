package service

import "fmt"

// ValidationError reports a missing or invalid input field, caught before
// any storage call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("field %q is required", e.Field)
	}
	return fmt.Sprintf("field %q is invalid: %s", e.Field, e.Reason)
}

// NotFoundError reports an operation that targeted a nonexistent request.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("service request %s not found", e.ID)
}

// BackendError wraps any storage or cache fault.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
