package introspect

import (
	"errors"
	"fmt"
)

// Error is returned by every failing introspection operation.
//
// Callers usually branch on Code, either directly or through the IsXxx helpers,
// which see through wrapping.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Type is the name of the type the lookup ran against.
	Type string

	// Member is the field or operation name involved.
	Member string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes introspection errors.
type ErrorCode string

const (
	// ErrCodeMemberNotFound indicates no field or operation with the name exists
	// anywhere in the type's ancestor chain.
	ErrCodeMemberNotFound ErrorCode = "MEMBER_NOT_FOUND"

	// ErrCodeAccessDenied indicates the member could not be made accessible,
	// e.g. a write through an instance passed by value.
	ErrCodeAccessDenied ErrorCode = "ACCESS_DENIED"

	// ErrCodeFormat indicates a string could not be parsed as the requested type.
	ErrCodeFormat ErrorCode = "FORMAT_ERROR"

	// ErrCodeInvocationFailed indicates the invoked operation itself failed.
	ErrCodeInvocationFailed ErrorCode = "INVOCATION_FAILED"

	// ErrCodeTypeMismatch indicates a value cannot be assigned to the member's type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its Code.
var (
	ErrMemberNotFound   = errors.New("member not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrFormat           = errors.New("format error")
	ErrInvocationFailed = errors.New("invocation failed")
	ErrTypeMismatch     = errors.New("type mismatch")
)

var sentinels = map[ErrorCode]error{
	ErrCodeMemberNotFound:   ErrMemberNotFound,
	ErrCodeAccessDenied:     ErrAccessDenied,
	ErrCodeFormat:           ErrFormat,
	ErrCodeInvocationFailed: ErrInvocationFailed,
	ErrCodeTypeMismatch:     ErrTypeMismatch,
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Type != "" {
		msg = fmt.Sprintf("%s (type=%s)", msg, e.Type)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Code.
func (e *Error) Is(target error) bool {
	return sentinels[e.Code] == target
}

func hasCode(err error, code ErrorCode) bool {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}

// IsMemberNotFound returns true if err is a MEMBER_NOT_FOUND error.
func IsMemberNotFound(err error) bool { return hasCode(err, ErrCodeMemberNotFound) }

// IsAccessDenied returns true if err is an ACCESS_DENIED error.
func IsAccessDenied(err error) bool { return hasCode(err, ErrCodeAccessDenied) }

// IsFormatError returns true if err is a FORMAT_ERROR error.
func IsFormatError(err error) bool { return hasCode(err, ErrCodeFormat) }

// IsInvocationFailed returns true if err is an INVOCATION_FAILED error.
func IsInvocationFailed(err error) bool { return hasCode(err, ErrCodeInvocationFailed) }

// IsTypeMismatch returns true if err is a TYPE_MISMATCH error.
func IsTypeMismatch(err error) bool { return hasCode(err, ErrCodeTypeMismatch) }

// CodeOf returns the ErrorCode carried by err, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func newMemberNotFound(typeName, kind, member string) *Error {
	return &Error{
		Code:    ErrCodeMemberNotFound,
		Type:    typeName,
		Member:  member,
		Message: fmt.Sprintf("cannot find %s name: %q", kind, member),
	}
}

func newAccessDenied(typeName, member, reason string) *Error {
	return &Error{
		Code:    ErrCodeAccessDenied,
		Type:    typeName,
		Member:  member,
		Message: fmt.Sprintf("cannot access %q: %s", member, reason),
	}
}

func newFormatError(target string, input any, cause error) *Error {
	return &Error{
		Code:    ErrCodeFormat,
		Type:    target,
		Message: fmt.Sprintf("cannot coerce %#v to %s", input, target),
		Err:     cause,
	}
}

func newInvocationFailed(typeName, member string, cause error) *Error {
	return &Error{
		Code:    ErrCodeInvocationFailed,
		Type:    typeName,
		Member:  member,
		Message: fmt.Sprintf("operation %q failed", member),
		Err:     cause,
	}
}

func newTypeMismatch(typeName, member, message string) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Type:    typeName,
		Member:  member,
		Message: message,
	}
}
