// Package provider defines the raw handle-based storage contract wrapped by
// package access.
//
// A provider owns transport and persistence. It exposes directory and file
// handles, byte-range reads, writable streams with a single-writer lock, and
// permission relays. Failures are reported as *Error values whose Message is
// the human-readable text surfaced to callers unchanged.
//
// Implementations register a locator scheme with Register so that a root
// directory can be opened from a URL with Open.
package provider

import (
	"context"
	"time"
)

// Kind identifies the type of an entry.
type Kind string

const (
	// KindFile is a regular file entry
	KindFile Kind = "file"

	// KindDirectory is a directory entry
	KindDirectory Kind = "directory"
)

// PermissionMode is the access mode of a permission descriptor.
type PermissionMode string

const (
	PermissionRead      PermissionMode = "read"
	PermissionReadWrite PermissionMode = "readwrite"
)

// PermissionDescriptor is the argument of QueryPermission and RequestPermission.
type PermissionDescriptor struct {
	// Mode defaults to PermissionRead when empty
	Mode PermissionMode
}

// PermissionState is the result of a permission query or request.
type PermissionState string

const (
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
	PermissionPrompt  PermissionState = "prompt"
)

// EntryRef is the minimal shape needed to compare or resolve an entry.
//
// Provider handles implement it. Values from other sources may too, in which
// case providers fall back to comparing kind and name.
type EntryRef interface {
	Kind() Kind
	Name() string
}

// Handle is the common part of file and directory handles.
type Handle interface {
	EntryRef

	// IsSameEntry reports whether other denotes the same entry.
	IsSameEntry(ctx context.Context, other EntryRef) (bool, error)

	// QueryPermission returns the current permission state for desc.
	QueryPermission(ctx context.Context, desc PermissionDescriptor) (PermissionState, error)

	// RequestPermission asks for desc and returns the resulting state.
	RequestPermission(ctx context.Context, desc PermissionDescriptor) (PermissionState, error)
}

// GetDirectoryOptions configures DirectoryHandle.GetDirectoryHandle.
type GetDirectoryOptions struct {
	Create bool
}

// GetFileOptions configures DirectoryHandle.GetFileHandle.
type GetFileOptions struct {
	Create bool
}

// RemoveOptions configures DirectoryHandle.RemoveEntry.
type RemoveOptions struct {
	Recursive bool
}

// CreateWritableOptions configures FileHandle.CreateWritable.
type CreateWritableOptions struct {
	// KeepExistingData starts the stream with the current file bytes
	// instead of an empty buffer.
	KeepExistingData bool
}

// DirEntry is one item yielded by a DirectoryIterator.
type DirEntry struct {
	Name   string
	Handle Handle
}

// DirectoryIterator enumerates the children of a directory lazily.
//
// Next returns io.EOF once the directory is exhausted. Entries created or
// removed while iterating may or may not be observed.
type DirectoryIterator interface {
	Next(ctx context.Context) (DirEntry, error)
	Close() error
}

// DirectoryHandle is a provider handle with Kind() == KindDirectory.
type DirectoryHandle interface {
	Handle

	// GetDirectoryHandle returns the child directory name, creating it when
	// opts.Create is set.
	GetDirectoryHandle(ctx context.Context, name string, opts GetDirectoryOptions) (DirectoryHandle, error)

	// GetFileHandle returns the child file name, creating an empty file
	// when opts.Create is set. An existing file is never truncated.
	GetFileHandle(ctx context.Context, name string, opts GetFileOptions) (FileHandle, error)

	// RemoveEntry removes the child name.
	RemoveEntry(ctx context.Context, name string, opts RemoveOptions) error

	// Resolve returns the path from this directory to entry, or nil when
	// entry is not a descendant.
	Resolve(ctx context.Context, entry EntryRef) ([]string, error)

	// Entries starts a fresh enumeration of the directory.
	Entries(ctx context.Context) (DirectoryIterator, error)
}

// FileHandle is a provider handle with Kind() == KindFile.
type FileHandle interface {
	Handle

	// GetFile returns a snapshot of the file's current state.
	GetFile(ctx context.Context) (File, error)

	// CreateWritable opens a writable stream on the file.
	CreateWritable(ctx context.Context, opts CreateWritableOptions) (WritableFileStream, error)
}

// File is a read-only snapshot of a file.
type File interface {
	Name() string

	// Type is the MIME type, or "" when unknown
	Type() string

	Size() int64
	LastModified() time.Time

	// ReadRange reads up to length bytes at offset. Reads past the end are
	// short.
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)

	// PreferredReadSize is the chunk size streaming readers should request.
	PreferredReadSize() int
}

// WriteType is the type of a structured write command.
type WriteType string

const (
	WriteTypeWrite    WriteType = "write"
	WriteTypeSeek     WriteType = "seek"
	WriteTypeTruncate WriteType = "truncate"
)

// WriteParams is a structured write command.
//
// An empty Type means WriteTypeWrite. Position is honored by write (write
// at that offset) and seek; Size by truncate.
type WriteParams struct {
	Type     WriteType
	Data     []byte
	Position *int64
	Size     *int64
}

// WritableFileStream is a write session over a file.
//
// Pending writes become visible only on Close. While a Writer holds the lock,
// stream-level operations fail with ErrLockConflict.
type WritableFileStream interface {
	Locked() bool
	Write(ctx context.Context, params WriteParams) error
	Seek(ctx context.Context, position int64) error
	Truncate(ctx context.Context, size int64) error
	Close(ctx context.Context) error

	// Abort discards pending writes and returns reason.
	Abort(ctx context.Context, reason string) (string, error)

	// GetWriter locks the stream and returns its writer.
	GetWriter(ctx context.Context) (Writer, error)
}

// Writer is the exclusive writer of a locked stream.
type Writer interface {
	// Ready is closed once the writer can accept writes.
	Ready() <-chan struct{}

	// Closed is closed when the stream is closed or aborted.
	Closed() <-chan struct{}

	DesiredSize(ctx context.Context) (int64, error)
	Write(ctx context.Context, params WriteParams) error
	Close(ctx context.Context) error
	Abort(ctx context.Context, reason string) (string, error)

	// ReleaseLock unlocks the owning stream. The writer is unusable
	// afterwards.
	ReleaseLock(ctx context.Context) error
}
