package badger

import (
	"github.com/google/uuid"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the entry tree
// into namespaces that support point lookups and prefix scans.
//
// Data Type          Prefix   Key Format                     Value
// ==========================================================================
// Entry              "f:"     f:<uuid>                       fileRecord (XDR)
// Children           "c:"     c:<parentUUID>:<childName>     childUUID (16 bytes)
// Share roots        "s:"     s:<shareName>                  rootUUID (16 bytes)
//
// Children keys sort by name within a directory, so a prefix scan returns
// entries in byte order of their names and a name-based pagination token
// can be resumed with a Seek.

const (
	// prefixFile is the key prefix for entry records
	prefixFile = "f:"

	// prefixChild is the key prefix for children mappings (parentUUID:name → childUUID)
	prefixChild = "c:"

	// prefixShare is the key prefix for share roots
	prefixShare = "s:"
)

// keyFile returns "f:<uuid>".
func keyFile(id uuid.UUID) []byte {
	return []byte(prefixFile + id.String())
}

// keyChild returns "c:<parentUUID>:<childName>".
func keyChild(parentID uuid.UUID, childName string) []byte {
	return []byte(prefixChild + parentID.String() + ":" + childName)
}

// keyChildPrefix returns "c:<parentUUID>:" for scanning a directory.
func keyChildPrefix(parentID uuid.UUID) []byte {
	return []byte(prefixChild + parentID.String() + ":")
}

// keyShare returns "s:<shareName>".
func keyShare(shareName string) []byte {
	return []byte(prefixShare + shareName)
}
