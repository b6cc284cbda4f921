package types

import (
	"context"
	"errors"
	"fmt"
)

// Retrieval error kinds
var (
	// ErrTransientBackend indicates an embedding or store call timed out or was temporarily unavailable
	ErrTransientBackend = errors.New("transient backend failure")

	// ErrInvalidQuery indicates an empty or whitespace-only query
	ErrInvalidQuery = errors.New("query is empty")

	// ErrBackendUnreachable indicates the graph store cannot be reached at all
	ErrBackendUnreachable = errors.New("graph store unreachable")

	// ErrAllChannelsFailed indicates every retrieval channel failed for a request
	ErrAllChannelsFailed = errors.New("all retrieval channels failed")
)

// TransientBackendError wraps a timeout, quota or network failure of one backend call.
// Channels degrade to empty output when they see it.
type TransientBackendError struct {
	Backend string
	Err     error
}

func (e *TransientBackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransientBackend, e.Backend, e.Err)
}

func (e *TransientBackendError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for TransientBackendError.
// Both errors.Is(err, ErrTransientBackend) and errors.Is(err, &TransientBackendError{}) match.
func (e *TransientBackendError) Is(target error) bool {
	if target == ErrTransientBackend {
		return true
	}
	_, ok := target.(*TransientBackendError)
	return ok
}

// NewTransientBackendError creates a transient error for the named backend.
func NewTransientBackendError(backend string, err error) *TransientBackendError {
	return &TransientBackendError{Backend: backend, Err: err}
}

// InvalidQueryError reports a query that cannot be retrieved against.
type InvalidQueryError struct {
	Query string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidQuery, e.Query)
}

// Is implements errors.Is support for InvalidQueryError.
func (e *InvalidQueryError) Is(target error) bool {
	if target == ErrInvalidQuery {
		return true
	}
	_, ok := target.(*InvalidQueryError)
	return ok
}

// NewInvalidQueryError creates an invalid query error.
func NewInvalidQueryError(query string) *InvalidQueryError {
	return &InvalidQueryError{Query: query}
}

// BackendUnreachableError reports that the graph store could not be reached.
// It is fatal for the current request and is never retried inline.
type BackendUnreachableError struct {
	Backend string
	Err     error
}

func (e *BackendUnreachableError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBackendUnreachable, e.Backend, e.Err)
}

func (e *BackendUnreachableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support for BackendUnreachableError.
func (e *BackendUnreachableError) Is(target error) bool {
	if target == ErrBackendUnreachable {
		return true
	}
	_, ok := target.(*BackendUnreachableError)
	return ok
}

// NewBackendUnreachableError creates an unreachable error for the named backend.
func NewBackendUnreachableError(backend string, err error) *BackendUnreachableError {
	return &BackendUnreachableError{Backend: backend, Err: err}
}

// IsTransient reports whether err should degrade a channel instead of failing the request.
// Context deadlines count as transient; an unreachable backend never does.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrBackendUnreachable) {
		return false
	}
	return errors.Is(err, ErrTransientBackend) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
