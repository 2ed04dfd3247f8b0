package content

import (
	"errors"
	"fmt"
)

// ============================================================================
// Standard Content Store Errors
// ============================================================================

// These errors provide a consistent way to indicate common failure conditions
// across all content store implementations. Providers should check for these
// errors with errors.Is and map them to their own error codes.
//
// Implementations wrap these errors with additional context:
//
//	if !exists {
//	    return fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
//	}

var (
	// ErrContentNotFound indicates the requested content does not exist.
	//
	// Returned by ReadAt, ReadContent, GetContentSize and Truncate for an
	// unknown ContentID. Delete never returns it.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidOffset indicates a negative or overflowing offset.
	//
	// An offset beyond the current size is NOT an error for WriteAt:
	// the gap is zero-filled.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidSize indicates a negative length or a size above the
	// implementation limits.
	ErrInvalidSize = errors.New("invalid size")

	// ErrStorageFull indicates the store has reached its configured capacity.
	ErrStorageFull = errors.New("storage full")

	// ErrInvalidContentID indicates the ContentID cannot be mapped to a
	// storage location (empty, absolute, or escaping the store root).
	ErrInvalidContentID = errors.New("invalid content ID")
)

// MaxContentSize is the largest content, in bytes, any store accepts.
const MaxContentSize = 1 << 40

// CheckWriteRange validates that writing length bytes at offset keeps the
// content within MaxContentSize. A negative offset is ErrInvalidOffset and an
// oversized result is ErrInvalidSize.
func CheckWriteRange(offset int64, length int) error {
	if offset < 0 {
		return fmt.Errorf("offset %d: %w", offset, ErrInvalidOffset)
	}
	if length < 0 || offset > MaxContentSize-int64(length) {
		return fmt.Errorf("write of %d bytes at %d exceeds %d: %w", length, offset, int64(MaxContentSize), ErrInvalidSize)
	}
	return nil
}

// CheckSize validates a content size against MaxContentSize.
func CheckSize(size uint64) error {
	if size > MaxContentSize {
		return fmt.Errorf("size %d exceeds %d: %w", size, uint64(MaxContentSize), ErrInvalidSize)
	}
	return nil
}
