// Package errors defines stable error codes for all resolution failure modes.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnableToResolve indicates a specifier could not be mapped to a file.
	// Fallback chains (haste -> node, file -> directory, node_modules ancestor
	// search) catch only this code to try the next alternative.
	UnableToResolve ErrorCode = "UNABLE_TO_RESOLVE"
	// EntryNotFound indicates the entry module is missing from the file index
	EntryNotFound ErrorCode = "ENTRY_NOT_FOUND"
	// ManifestInvalid indicates a package.json could not be parsed
	ManifestInvalid ErrorCode = "MANIFEST_INVALID"
	// ExtractFailed indicates dependency extraction failed for a file
	ExtractFailed ErrorCode = "EXTRACT_FAILED"
	// IndexUnavailable indicates the file index could not be built
	IndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ResolveError represents a resolution failure with code, requesting module,
// requested specifier, and a human-readable reason.
type ResolveError struct {
	Code    ErrorCode `json:"code"`
	From    string    `json:"from,omitempty"`
	Name    string    `json:"name,omitempty"`
	Message string    `json:"message"`
	cause   error     // Underlying error (not exported to JSON)
}

// NewResolveError creates a new ResolveError
func NewResolveError(code ErrorCode, message string, cause error) *ResolveError {
	return &ResolveError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// NewUnableToResolve creates the one error kind internal fallback chains catch.
func NewUnableToResolve(from, name, reason string) *ResolveError {
	return &ResolveError{
		Code:    UnableToResolve,
		From:    from,
		Name:    name,
		Message: reason,
	}
}

// Error implements the error interface
func (e *ResolveError) Error() string {
	switch {
	case e.Name != "" && e.From != "":
		return fmt.Sprintf("[%s] unable to resolve %q from %s: %s", e.Code, e.Name, e.From, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *ResolveError) Unwrap() error {
	return e.cause
}

// IsUnableToResolve reports whether err is a tolerated resolution failure.
// Any error that fails this check must propagate and abort the surrounding
// resolution instead of triggering the next fallback.
func IsUnableToResolve(err error) bool {
	var re *ResolveError
	if stderrors.As(err, &re) {
		return re.Code == UnableToResolve
	}
	return false
}

// CodeOf returns the error code of err, or InternalError for foreign errors.
func CodeOf(err error) ErrorCode {
	var re *ResolveError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}
