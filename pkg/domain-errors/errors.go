// Package domainerrors provides coded errors for the onboarding engine.
//
// Services return these so transport layers can map failures to status
// codes without string matching. Stores return sentinel errors
// (pkg/platform/sentinel) and services translate them here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeBadRequest marks malformed or missing caller input.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a lookup for an entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeInvalidState marks an operation against an entity whose state
	// forbids it, e.g. answering a terminal session.
	CodeInvalidState Code = "invalid_state"
	// CodeValidation marks a recoverable field-level validation failure;
	// the caller may retry the same field.
	CodeValidation Code = "validation_failed"
	// CodeAttemptLimit marks the attempt ceiling being exceeded on a
	// single field; the session has moved to failed.
	CodeAttemptLimit Code = "attempt_limit_exceeded"
	// CodeConflict marks a uniqueness or concurrent-modification clash.
	CodeConflict Code = "conflict"
	// CodeUnavailable marks a collaborator (AI service, store) failure.
	// The operation left no partial state behind and may be retried.
	CodeUnavailable Code = "unavailable"
	// CodeInternal marks unexpected failures. Details are logged, not
	// returned to callers.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	// Meta carries structured context (field name, attempt count,
	// expected format) for boundary layers to render.
	Meta map[string]string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// New creates a coded error with a caller-facing message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, err: err}
}

// WithMeta returns a copy of the error carrying additional context.
func (e *Error) WithMeta(kv ...string) *Error {
	clone := &Error{Code: e.Code, Message: e.Message, err: e.err, Meta: map[string]string{}}
	for k, v := range e.Meta {
		clone.Meta[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		clone.Meta[kv[i]] = kv[i+1]
	}
	return clone
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message, empty for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// MetaOf extracts structured context, nil for uncoded errors.
func MetaOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Meta
	}
	return nil
}
