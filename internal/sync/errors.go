package sync

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures of remote directory operations.
type ErrorCode string

const (
	// CodeTransient covers network errors, timeouts and 5xx responses.
	// Transient failures are retried with backoff before surfacing.
	CodeTransient ErrorCode = "TRANSIENT"

	// CodeInconsistent indicates the remote accepted an operation but a
	// follow-up existence check disagreed. The remote directory is
	// eventually consistent, so these are retried like transient errors.
	CodeInconsistent ErrorCode = "INCONSISTENT"

	// CodeMalformedResponse indicates an unparseable or unexpectedly
	// shaped response body. Not retried; callers degrade to empty data.
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// CodeConfiguration indicates missing required identifiers or
	// credentials. Fatal before any network activity.
	CodeConfiguration ErrorCode = "CONFIGURATION"

	// CodeCancelled indicates the user interrupted a batch. The batch
	// stops and partial results are preserved.
	CodeCancelled ErrorCode = "CANCELLED"
)

// OpError is a structured failure from a directory operation.
//
// Op names the operation ("delete entity", "update group"), Target
// identifies the affected item (entity id, group name), and Err carries
// the underlying cause when there is one.
type OpError struct {
	Code   ErrorCode
	Op     string
	Target string
	Err    error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.Target != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s %q: %v", e.Code, e.Op, e.Target, e.Err)
	case e.Target != "":
		return fmt.Sprintf("%s: %s %q", e.Code, e.Op, e.Target)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Op)
	}
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates an OpError for the given operation and target.
func NewOpError(code ErrorCode, op, target string, err error) *OpError {
	return &OpError{Code: code, Op: op, Target: target, Err: err}
}

// CodeOf extracts the error code from an error chain.
// Returns an empty code if the chain holds no OpError.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsTransient reports whether the error is a retryable transport failure.
func IsTransient(err error) bool {
	return CodeOf(err) == CodeTransient
}

// IsConfiguration reports whether the error is a fatal configuration error.
func IsConfiguration(err error) bool {
	return CodeOf(err) == CodeConfiguration
}
