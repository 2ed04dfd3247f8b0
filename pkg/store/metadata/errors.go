package metadata

import (
	"errors"
	"fmt"
)

// StoreError represents a domain error from metadata store operations.
//
// These are business logic errors (entry not found, directory not empty, etc.)
// as opposed to infrastructure errors (disk failure, corrupt database).
// Providers translate StoreError codes into their own error taxonomy.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the entry name or handle related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a metadata store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested entry or share doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates an entry with the name already exists
	ErrAlreadyExists

	// ErrNotEmpty indicates a directory still has children
	ErrNotEmpty

	// ErrIsDirectory indicates the operation expected a file but got a directory
	ErrIsDirectory

	// ErrNotDirectory indicates the operation expected a directory but got a file
	ErrNotDirectory

	// ErrInvalidArgument indicates invalid parameters were provided
	// Examples: empty name, name containing '/', malformed pagination token
	ErrInvalidArgument

	// ErrInvalidHandle indicates the file handle is malformed
	ErrInvalidHandle

	// ErrIOError indicates the backing storage failed
	ErrIOError

	// ErrNoSpace indicates a configured entry limit was reached
	ErrNoSpace
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "NotFound"
	case ErrAlreadyExists:
		return "AlreadyExists"
	case ErrNotEmpty:
		return "NotEmpty"
	case ErrIsDirectory:
		return "IsDirectory"
	case ErrNotDirectory:
		return "NotDirectory"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidHandle:
		return "InvalidHandle"
	case ErrIOError:
		return "IOError"
	case ErrNoSpace:
		return "NoSpace"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// NewStoreError builds a *StoreError.
func NewStoreError(code ErrorCode, message, path string) *StoreError {
	return &StoreError{Code: code, Message: message, Path: path}
}

// NewNotFoundError reports a missing entry.
func NewNotFoundError(path, entity string) *StoreError {
	return &StoreError{Code: ErrNotFound, Message: entity + " not found", Path: path}
}

// CodeOf extracts the ErrorCode from err. The boolean is false when err does
// not wrap a *StoreError.
func CodeOf(err error) (ErrorCode, bool) {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Code, true
	}
	return 0, false
}

// IsNotFoundError reports whether err is a StoreError with code ErrNotFound.
func IsNotFoundError(err error) bool {
	code, ok := CodeOf(err)
	return ok && code == ErrNotFound
}
