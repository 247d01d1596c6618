// Package apperr defines the error kinds surfaced by the tracker core.
//
// Every public operation returns one of these kinds (possibly wrapped) so the
// HTTP layer, the worker and the CLI can react without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input rejected before any side effect.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an update or delete that targeted a missing id.
	ErrNotFound = errors.New("not found")
	// ErrExternalDependency marks a failed call to the LLM classifier or parser.
	ErrExternalDependency = errors.New("external dependency failure")
	// ErrPrecondition marks a request that is valid but cannot run against the current state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrCycleDetected marks a goal contribution graph that loops back on itself.
	ErrCycleDetected = errors.New("contribution cycle detected")
)

// Error carries a user-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns an ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns an ErrNotFound naming the missing entity.
func NotFound(entity string, id any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// External wraps a failure of an external collaborator.
func External(message string, err error) error {
	return &Error{Kind: ErrExternalDependency, Message: message, Err: err}
}

// Precondition returns an ErrPrecondition with the given message.
func Precondition(message string) error {
	return &Error{Kind: ErrPrecondition, Message: message}
}

// Cycle returns an ErrCycleDetected naming the goal that was revisited.
func Cycle(goalID any) error {
	return &Error{Kind: ErrCycleDetected, Message: fmt.Sprintf("goal %v is its own ancestor", goalID)}
}

// Message returns the user-facing message of err, falling back to err.Error().
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps an error kind to the status code returned by the API.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrExternalDependency):
		return http.StatusBadGateway
	case errors.Is(err, ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, ErrCycleDetected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the short error code used in JSON error envelopes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrExternalDependency):
		return "external_dependency_error"
	case errors.Is(err, ErrPrecondition):
		return "precondition_failed"
	case errors.Is(err, ErrCycleDetected):
		return "cycle_detected"
	default:
		return "internal_error"
	}
}
