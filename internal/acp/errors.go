// ABOUTME: Classified errors for the ACP execution boundary
// ABOUTME: Every failure maps to one code with a context/what/remedy message

package acp

import (
	"errors"
	"fmt"
)

// Code classifies an ACP execution failure. The executor surfaces exactly
// one code per failure; there is no unclassified error path.
type Code string

const (
	SpawnFailed      Code = "SPAWN_FAILED"
	HandshakeTimeout Code = "HANDSHAKE_TIMEOUT"
	SessionTimeout   Code = "SESSION_TIMEOUT"
	ProtocolError    Code = "PROTOCOL_ERROR"
	EmptyResponse    Code = "EMPTY_RESPONSE"
	Cancelled        Code = "CANCELLED"
)

// ClassifiedError is the structured error contract of the ACP boundary.
// Unlike the discovery layers, failures here must reach the user with a
// message that names what failed and what to do about it.
type ClassifiedError struct {
	Code    Code
	Context string
	What    string
	Remedy  string
	Err     error
}

// Error renders "Context: What. Remedy."
func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %s. %s", e.Context, e.What, e.Remedy)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// newError builds a classified error wrapping cause (which may be nil).
func newError(code Code, context, what, remedy string, cause error) *ClassifiedError {
	return &ClassifiedError{Code: code, Context: context, What: what, Remedy: remedy, Err: cause}
}

// CodeOf extracts the classification code, or "" for non-ACP errors.
func CodeOf(err error) Code {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
