package metadata

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FileHandle is an opaque, stable reference to an entry in a metadata store.
//
// Format: "<shareName>:<uuid>". Handles survive process restarts when the
// store is persistent, and two handles are equal iff they denote the same entry.
type FileHandle []byte

// MaxHandleSize bounds encoded handles so they fit common protocol limits.
const MaxHandleSize = 64

// String returns the handle as text.
func (h FileHandle) String() string {
	return string(h)
}

// EncodeShareHandle encodes a share name and entry ID into a FileHandle.
//
// Parameters:
//   - shareName: The name of the share (e.g., "/export")
//   - id: The entry ID
//
// Returns:
//   - FileHandle: "shareName:uuid"
//   - error: ErrInvalidArgument if the share name is empty, contains ':',
//     or the encoded handle exceeds MaxHandleSize
func EncodeShareHandle(shareName string, id uuid.UUID) (FileHandle, error) {
	if shareName == "" {
		return nil, NewStoreError(ErrInvalidArgument, "empty share name", "")
	}
	if strings.Contains(shareName, ":") {
		return nil, NewStoreError(ErrInvalidArgument, "share name must not contain ':'", shareName)
	}

	encoded := shareName + ":" + id.String()
	if len(encoded) > MaxHandleSize {
		return nil, NewStoreError(ErrInvalidArgument,
			fmt.Sprintf("handle length %d exceeds %d bytes", len(encoded), MaxHandleSize), shareName)
	}
	return FileHandle(encoded), nil
}

// EncodeFileHandle encodes the handle of f.
func EncodeFileHandle(f *File) (FileHandle, error) {
	if f == nil {
		return nil, NewStoreError(ErrInvalidArgument, "nil file", "")
	}
	return EncodeShareHandle(f.ShareName, f.ID)
}

// DecodeFileHandle splits a handle into its share name and entry ID.
//
// Returns an ErrInvalidHandle StoreError if the handle is malformed.
func DecodeFileHandle(handle FileHandle) (shareName string, id uuid.UUID, err error) {
	s := string(handle)

	idx := strings.LastIndex(s, ":")
	if idx <= 0 {
		return "", uuid.Nil, NewStoreError(ErrInvalidHandle, "missing ':' separator", s)
	}

	shareName = s[:idx]
	id, err = uuid.Parse(s[idx+1:])
	if err != nil {
		return "", uuid.Nil, NewStoreError(ErrInvalidHandle, "invalid entry id", s)
	}
	return shareName, id, nil
}

// HandleToINode converts a FileHandle to a stable uint64 identifier.
//
// Uses the first 8 bytes of the SHA-256 of the handle in big-endian order.
// Returns 0 for an empty handle.
func HandleToINode(handle FileHandle) uint64 {
	if len(handle) == 0 {
		return 0
	}
	hash := sha256.Sum256(handle)
	return binary.BigEndian.Uint64(hash[:8])
}

// ValidateName checks that name can be stored as a single directory entry.
//
// Rejected names: empty, ".", "..", names containing '/' or NUL, and names
// longer than 255 bytes.
func ValidateName(name string) error {
	switch {
	case name == "":
		return NewStoreError(ErrInvalidArgument, "name must not be empty", name)
	case name == "." || name == "..":
		return NewStoreError(ErrInvalidArgument, "name must not be '.' or '..'", name)
	case strings.ContainsAny(name, "/\x00"):
		return NewStoreError(ErrInvalidArgument, "name must not contain '/' or NUL", name)
	case len(name) > 255:
		return NewStoreError(ErrInvalidArgument, "name too long", name)
	}
	return nil
}
