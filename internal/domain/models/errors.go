package models

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnauthenticated        = errors.New("unauthenticated")
	ErrNotFound               = errors.New("not found")
	ErrInvalidRoleCombination = errors.New("admin and owner can't be set at the same time")
	ErrPrivilegeDenied        = errors.New("privilege denied")
	ErrAllocationFailed       = errors.New("job allocation failed")
	ErrPopulateFailed         = errors.New("job populate failed")
	ErrMissingResume          = errors.New("resume is missing")
	ErrTransport              = errors.New("transport error")
	ErrValidation             = errors.New("validation failed")
)

// UserNotFoundMessage is shown when a roster lookup misses.
const UserNotFoundMessage = "User not found."

// TransportError describes a failed call to the remote API.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: request failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// ValidationError carries every problem found in a request, never only the first one.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StatusCode returns the HTTP status of a transport error or zero.
func StatusCode(err error) int {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}
	return 0
}
