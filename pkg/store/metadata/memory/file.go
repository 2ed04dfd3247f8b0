package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// GetFile returns the entry referenced by handle.
func (store *MemoryMetadataStore) GetFile(ctx context.Context, handle metadata.FileHandle) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	file, err := store.resolveLocked(handle)
	if err != nil {
		return nil, err
	}
	return clone(file), nil
}

// Lookup returns the child named name of dirHandle.
func (store *MemoryMetadataStore) Lookup(ctx context.Context, dirHandle metadata.FileHandle, name string) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	dir, err := store.resolveDirLocked(dirHandle)
	if err != nil {
		return nil, err
	}

	childID, ok := store.children[dir.ID][name]
	if !ok {
		return nil, metadata.NewNotFoundError(name, "entry")
	}
	return clone(store.files[childID]), nil
}

// Create adds a new entry named name under parentHandle.
func (store *MemoryMetadataStore) Create(
	ctx context.Context,
	parentHandle metadata.FileHandle,
	name string,
	attr *metadata.FileAttr,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, metadata.NewStoreError(metadata.ErrInvalidArgument, "nil attributes", name)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	parent, err := store.resolveDirLocked(parentHandle)
	if err != nil {
		return nil, err
	}
	if _, exists := store.children[parent.ID][name]; exists {
		return nil, metadata.NewStoreError(metadata.ErrAlreadyExists, "entry already exists", name)
	}
	if store.config.MaxFiles > 0 && uint64(len(store.files)) >= store.config.MaxFiles {
		return nil, metadata.NewStoreError(metadata.ErrNoSpace, "entry limit reached", name)
	}

	now := time.Now()
	file := metadata.File{
		ID:        uuid.New(),
		ShareName: parent.ShareName,
		ParentID:  parent.ID,
		Name:      name,
		FileAttr:  *attr,
	}
	file.Mode &= 0o777
	if file.Mtime.IsZero() {
		file.Mtime = now
	}
	file.Ctime = now
	if file.Type == metadata.FileTypeDirectory {
		file.Size = 0
		file.ContentID = ""
		store.children[file.ID] = make(map[string]uuid.UUID)
	}

	store.files[file.ID] = file
	store.children[parent.ID][name] = file.ID

	return clone(file), nil
}

// SetFileAttributes updates selected attributes of an entry.
func (store *MemoryMetadataStore) SetFileAttributes(
	ctx context.Context,
	handle metadata.FileHandle,
	attrs *metadata.SetAttrs,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	file, err := store.resolveLocked(handle)
	if err != nil {
		return nil, err
	}
	if err := metadata.ApplySetAttrs(&file.FileAttr, attrs, time.Now()); err != nil {
		return nil, err
	}

	store.files[file.ID] = file
	return clone(file), nil
}

// Remove deletes the child named name of parentHandle.
func (store *MemoryMetadataStore) Remove(
	ctx context.Context,
	parentHandle metadata.FileHandle,
	name string,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	parent, err := store.resolveDirLocked(parentHandle)
	if err != nil {
		return nil, err
	}

	childID, ok := store.children[parent.ID][name]
	if !ok {
		return nil, metadata.NewNotFoundError(name, "entry")
	}
	child := store.files[childID]

	if child.Type == metadata.FileTypeDirectory {
		if len(store.children[childID]) > 0 {
			return nil, metadata.NewStoreError(metadata.ErrNotEmpty, "directory not empty", name)
		}
		delete(store.children, childID)
	}

	delete(store.children[parent.ID], name)
	delete(store.files, childID)

	parent.Mtime = time.Now()
	parent.Ctime = parent.Mtime
	store.files[parent.ID] = parent

	return clone(child), nil
}
