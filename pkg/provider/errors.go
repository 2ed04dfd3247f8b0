package provider

import (
	"errors"
	"fmt"
)

// MsgWrongEntryType is the message providers use when a lookup finds an
// entry of the other kind.
const MsgWrongEntryType = "The path supplied exists, but was not an entry of requested type."

// MsgWriterLocked is the message of a second GetWriter on a locked stream.
const MsgWriterLocked = "Writable file stream locked by another writer"

// MsgSeekPastSize is the message of a seek beyond the current length.
const MsgSeekPastSize = "Seeking past size"

// ErrorCode classifies a provider failure.
type ErrorCode int

const (
	// ErrUnknown is a failure the provider did not classify
	ErrUnknown ErrorCode = iota

	// ErrNotFound indicates the lookup or removal target is absent
	ErrNotFound

	// ErrNotEmpty indicates a non-recursive removal of a populated directory
	ErrNotEmpty

	// ErrTypeMismatch indicates the entry exists but has the other kind
	ErrTypeMismatch

	// ErrOutOfRange indicates a seek past the current size
	ErrOutOfRange

	// ErrLockConflict indicates the stream is held by a writer
	ErrLockConflict

	// ErrInvalidArgument indicates a malformed argument
	ErrInvalidArgument

	// ErrInvalidState indicates an operation on a closed or aborted stream
	// or a released writer
	ErrInvalidState

	// ErrPermissionDenied indicates a write on a read-only entry or provider
	ErrPermissionDenied

	// ErrNotSupported indicates the provider does not implement the operation
	ErrNotSupported

	// ErrIO indicates the backing storage failed
	ErrIO
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnknown:
		return "Unknown"
	case ErrNotFound:
		return "NotFound"
	case ErrNotEmpty:
		return "NotEmpty"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrOutOfRange:
		return "OutOfRange"
	case ErrLockConflict:
		return "LockConflict"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidState:
		return "InvalidState"
	case ErrPermissionDenied:
		return "PermissionDenied"
	case ErrNotSupported:
		return "NotSupported"
	case ErrIO:
		return "IO"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error is a provider failure.
//
// Error() returns Message verbatim so callers see exactly what the provider
// reported. The underlying cause, if any, is available through Unwrap.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds an *Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying cause. The message is cause.Error().
func Wrap(code ErrorCode, cause error) *Error {
	return &Error{Code: code, Message: cause.Error(), Err: cause}
}

// CodeOf extracts the ErrorCode from err. The boolean is false when err does
// not wrap an *Error.
func CodeOf(err error) (ErrorCode, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code, true
	}
	return ErrUnknown, false
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}
