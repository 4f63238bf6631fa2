package jdgen

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors shared by the catalog, state and generator packages.
var (
	// ErrNotFound is returned when a template, document, fragment or symbol
	// does not exist.
	ErrNotFound = errors.New("jdgen: not found")

	// ErrDuplicate is returned when a name that must be unique is registered twice.
	ErrDuplicate = errors.New("jdgen: duplicate")

	// ErrNotInitialized is returned when a project has no persisted state yet.
	ErrNotInitialized = errors.New("jdgen: project not initialized")
)

// NotFoundError represents a lookup miss.
type NotFoundError struct {
	label string
	key   string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.key != "" {
		return fmt.Sprintf("jdgen: %s %q not found", e.label, e.key)
	}
	return fmt.Sprintf("jdgen: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the kind of object that was looked up.
func (e *NotFoundError) Label() string {
	return e.label
}

// Key returns the key that was searched for, if available.
func (e *NotFoundError) Key() string {
	return e.key
}

// NewNotFoundError returns a new NotFoundError for the given object kind.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithKey returns a new NotFoundError with the key that was searched for.
func NewNotFoundErrorWithKey(label, key string) *NotFoundError {
	return &NotFoundError{label: label, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// DuplicateError represents a second registration of a unique name.
type DuplicateError struct {
	label string
	key   string
}

// Error returns the error string.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("jdgen: %s %q already exists", e.label, e.key)
}

// Is reports whether the target error matches DuplicateError.
func (e *DuplicateError) Is(err error) bool {
	return err == ErrDuplicate
}

// Label returns the kind of object that was registered.
func (e *DuplicateError) Label() string {
	return e.label
}

// Key returns the duplicated key.
func (e *DuplicateError) Key() string {
	return e.key
}

// NewDuplicateError returns a new DuplicateError.
func NewDuplicateError(label, key string) *DuplicateError {
	return &DuplicateError{label: label, key: key}
}

// IsDuplicate returns true if the error is a DuplicateError.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateError
	return errors.As(err, &e) || errors.Is(err, ErrDuplicate)
}

// RollbackError wraps an error that occurred while restoring files after a
// failed commit.
type RollbackError struct {
	Err error // Error that triggered the rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("jdgen: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "jdgen: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("jdgen: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
