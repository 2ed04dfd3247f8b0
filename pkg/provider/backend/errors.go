package backend

import (
	"context"
	"errors"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// mapStoreError converts metadata and content store failures into provider
// errors. Context errors and provider errors pass through unchanged.
//
// Kind errors from the metadata store (a file used as a directory or the
// reverse) are reported with the generic wrong-entry-type message, the same
// way lookups of the wrong kind are.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var perr *provider.Error
	if errors.As(err, &perr) {
		return err
	}

	var storeErr *metadata.StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.Code {
		case metadata.ErrNotFound:
			return provider.Wrap(provider.ErrNotFound, err)
		case metadata.ErrNotEmpty:
			return provider.Wrap(provider.ErrNotEmpty, err)
		case metadata.ErrIsDirectory, metadata.ErrNotDirectory:
			return &provider.Error{Code: provider.ErrUnknown, Message: provider.MsgWrongEntryType, Err: err}
		case metadata.ErrInvalidArgument, metadata.ErrInvalidHandle:
			return provider.Wrap(provider.ErrInvalidArgument, err)
		case metadata.ErrAlreadyExists:
			return provider.Wrap(provider.ErrInvalidState, err)
		default:
			logger.Warn("backend: metadata store failure: %v", err)
			return provider.Wrap(provider.ErrIO, err)
		}
	}

	switch {
	case errors.Is(err, content.ErrContentNotFound):
		return provider.Wrap(provider.ErrNotFound, err)
	case errors.Is(err, content.ErrInvalidOffset), errors.Is(err, content.ErrInvalidSize):
		return provider.Wrap(provider.ErrInvalidArgument, err)
	}

	logger.Warn("backend: content store failure: %v", err)
	return provider.Wrap(provider.ErrIO, err)
}

// errorLabel is the metrics label of an operation outcome.
func errorLabel(err error) string {
	if err == nil {
		return ""
	}
	if code, ok := provider.CodeOf(err); ok {
		return code.String()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "Cancelled"
	}
	return "Other"
}

func notFound(kind, name string) error {
	return provider.Errorf(provider.ErrNotFound, "%s \"%s\" not found", kind, name)
}

func wrongEntryType() error {
	return provider.NewError(provider.ErrUnknown, provider.MsgWrongEntryType)
}
