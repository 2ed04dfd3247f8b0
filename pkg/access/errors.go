package access

import (
	"errors"
	"strings"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// translateError reclassifies a wrong-entry-type failure as
// ErrTypeMismatch, keeping its message. Every other error, nil included, is
// returned as is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if provider.HasCode(err, provider.ErrTypeMismatch) {
		return err
	}
	if !strings.Contains(err.Error(), provider.MsgWrongEntryType) {
		return err
	}
	return &provider.Error{Code: provider.ErrTypeMismatch, Message: err.Error(), Err: err}
}

// IsNotFound reports whether err is an ErrNotFound failure.
func IsNotFound(err error) bool { return provider.HasCode(err, provider.ErrNotFound) }

// IsNotEmpty reports whether err is an ErrNotEmpty failure.
func IsNotEmpty(err error) bool { return provider.HasCode(err, provider.ErrNotEmpty) }

// IsTypeMismatch reports whether err is an ErrTypeMismatch failure.
func IsTypeMismatch(err error) bool { return provider.HasCode(err, provider.ErrTypeMismatch) }

// IsOutOfRange reports whether err is an ErrOutOfRange failure.
func IsOutOfRange(err error) bool { return provider.HasCode(err, provider.ErrOutOfRange) }

// IsLockConflict reports whether err is an ErrLockConflict failure.
func IsLockConflict(err error) bool { return provider.HasCode(err, provider.ErrLockConflict) }

// IsInvalidArgument reports whether err is an ErrInvalidArgument failure.
func IsInvalidArgument(err error) bool { return provider.HasCode(err, provider.ErrInvalidArgument) }

// IsInvalidState reports whether err is an ErrInvalidState failure.
func IsInvalidState(err error) bool { return provider.HasCode(err, provider.ErrInvalidState) }

// ErrorCode returns the provider code of err, or ErrUnknown.
func ErrorCode(err error) provider.ErrorCode {
	var perr *provider.Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return provider.ErrUnknown
}
