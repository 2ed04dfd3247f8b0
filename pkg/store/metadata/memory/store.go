// Package memory implements an in-memory metadata store.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// MemoryMetadataStoreConfig configures a MemoryMetadataStore.
type MemoryMetadataStoreConfig struct {
	// MaxFiles limits the number of entries across all shares (0 = unlimited)
	MaxFiles uint64 `mapstructure:"max_files"`
}

// MemoryMetadataStore implements MetadataStore using in-memory maps.
//
// Suitable for tests, ephemeral shares, and the mem:// locator scheme.
//
// Storage Model:
//
//  1. files: entry ID → entry (stored by value, copied on every read)
//  2. children: directory ID → child name → child ID
//  3. roots: share name → root entry ID
//
// Thread Safety:
// All operations are protected by a single read-write mutex.
type MemoryMetadataStore struct {
	mu       sync.RWMutex
	config   MemoryMetadataStoreConfig
	files    map[uuid.UUID]metadata.File
	children map[uuid.UUID]map[string]uuid.UUID
	roots    map[string]uuid.UUID
}

// NewMemoryMetadataStore creates an empty in-memory metadata store.
func NewMemoryMetadataStore(config MemoryMetadataStoreConfig) *MemoryMetadataStore {
	return &MemoryMetadataStore{
		config:   config,
		files:    make(map[uuid.UUID]metadata.File),
		children: make(map[uuid.UUID]map[string]uuid.UUID),
		roots:    make(map[string]uuid.UUID),
	}
}

// Close releases nothing; the data is dropped with the store.
func (store *MemoryMetadataStore) Close() error {
	return nil
}

// resolveLocked decodes handle and returns the stored entry.
// Caller must hold store.mu.
func (store *MemoryMetadataStore) resolveLocked(handle metadata.FileHandle) (metadata.File, error) {
	shareName, id, err := metadata.DecodeFileHandle(handle)
	if err != nil {
		return metadata.File{}, err
	}

	file, ok := store.files[id]
	if !ok || file.ShareName != shareName {
		return metadata.File{}, metadata.NewNotFoundError(handle.String(), "entry")
	}
	return file, nil
}

// resolveDirLocked is resolveLocked plus an ErrNotDirectory check.
func (store *MemoryMetadataStore) resolveDirLocked(handle metadata.FileHandle) (metadata.File, error) {
	dir, err := store.resolveLocked(handle)
	if err != nil {
		return metadata.File{}, err
	}
	if dir.Type != metadata.FileTypeDirectory {
		return metadata.File{}, metadata.NewStoreError(metadata.ErrNotDirectory, "not a directory", dir.Name)
	}
	return dir, nil
}

// clone returns a heap copy safe to hand to callers.
func clone(f metadata.File) *metadata.File {
	return &f
}
