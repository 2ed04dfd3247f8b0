package metadata

import (
	"time"

	"github.com/google/uuid"
)

// File represents a file or directory entry in the metadata store.
//
// Each entry belongs to exactly one share and has exactly one parent, except
// share roots whose ParentID is uuid.Nil. The (ParentID, Name) pair is unique
// within a share.
//
// Handle encoding:
//
//	Handle = "shareName:uuid" (e.g., "/export:550e8400-e29b-41d4-a716-446655440000")
type File struct {
	// ID is a unique identifier for this entry (UUID v4).
	ID uuid.UUID `json:"id"`

	// ShareName is the share this entry belongs to (e.g., "/export").
	ShareName string `json:"share_name"`

	// ParentID is the ID of the containing directory, uuid.Nil for share roots.
	ParentID uuid.UUID `json:"parent_id"`

	// Name is the entry name within its parent. Share roots carry the share name.
	Name string `json:"name"`

	// FileAttr is embedded for convenient access to attributes.
	FileAttr
}

// IsRoot reports whether the entry is a share root.
func (f *File) IsRoot() bool {
	return f.ParentID == uuid.Nil
}

// Handle returns the encoded file handle of the entry.
func (f *File) Handle() (FileHandle, error) {
	return EncodeFileHandle(f)
}

// FileAttr contains the attributes of a file or directory.
//
// Time Semantics:
//   - Mtime (modification time): Updated when file content changes
//   - Ctime (change time): Updated when metadata changes
type FileAttr struct {
	// Type is the entry type (regular file or directory)
	Type FileType `json:"type"`

	// Mode contains Unix permission bits (0o777 max)
	Mode uint32 `json:"mode"`

	// Size is the file size in bytes. Always 0 for directories.
	Size uint64 `json:"size"`

	// Mtime is the last modification time (content changes)
	Mtime time.Time `json:"mtime"`

	// Ctime is the last change time (metadata changes)
	Ctime time.Time `json:"ctime"`

	// ContentID identifies the file bytes in the content store.
	// Empty for directories and for files that were never written.
	ContentID ContentID `json:"content_id"`
}

// SetAttrs specifies which attributes to update in a SetFileAttributes call.
//
// Each field is a pointer. A nil pointer means "do not change this attribute".
// The store updates Ctime whenever any attribute changes.
type SetAttrs struct {
	// Mode is the new permission bits
	Mode *uint32

	// Size is the new recorded size in bytes. Only valid for regular files.
	Size *uint64

	// Mtime is the new modification time
	Mtime *time.Time

	// ContentID repoints the file at different content
	ContentID *ContentID
}

// FileType represents the type of a filesystem entry.
type FileType int

const (
	// FileTypeRegular is a regular file containing data
	FileTypeRegular FileType = iota

	// FileTypeDirectory is a directory (container for other entries)
	FileTypeDirectory
)

func (t FileType) String() string {
	switch t {
	case FileTypeRegular:
		return "file"
	case FileTypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// ContentID is an identifier for retrieving file content from the content store.
//
// The metadata store treats it as opaque. The backend provider generates
// UUID-based ids when a writable stream first needs storage.
type ContentID string

// Uint32Ptr returns a pointer to v, for building SetAttrs.
func Uint32Ptr(v uint32) *uint32 { return &v }

// Uint64Ptr returns a pointer to v, for building SetAttrs.
func Uint64Ptr(v uint64) *uint64 { return &v }

// TimePtr returns a pointer to v, for building SetAttrs.
func TimePtr(v time.Time) *time.Time { return &v }

// ContentIDPtr returns a pointer to v, for building SetAttrs.
func ContentIDPtr(v ContentID) *ContentID { return &v }

// ApplySetAttrs applies attrs onto attr and bumps Ctime when anything changed.
//
// Shared by store implementations so the update rules stay identical.
// Returns an ErrIsDirectory StoreError when Size or ContentID targets a directory.
func ApplySetAttrs(attr *FileAttr, attrs *SetAttrs, now time.Time) error {
	if attrs == nil {
		return nil
	}
	if attr.Type == FileTypeDirectory && (attrs.Size != nil || attrs.ContentID != nil) {
		return NewStoreError(ErrIsDirectory, "cannot set size or content on a directory", "")
	}

	changed := false
	if attrs.Mode != nil {
		attr.Mode = *attrs.Mode & 0o777
		changed = true
	}
	if attrs.Size != nil {
		attr.Size = *attrs.Size
		changed = true
	}
	if attrs.Mtime != nil {
		attr.Mtime = *attrs.Mtime
		changed = true
	}
	if attrs.ContentID != nil {
		attr.ContentID = *attrs.ContentID
		changed = true
	}
	if changed {
		attr.Ctime = now
	}
	return nil
}
