package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// CreateRootDirectory creates the root directory of a share.
//
// Idempotent: an existing root is returned unchanged.
func (store *MemoryMetadataStore) CreateRootDirectory(
	ctx context.Context,
	shareName string,
	attr *metadata.FileAttr,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if id, ok := store.roots[shareName]; ok {
		return clone(store.files[id]), nil
	}

	root := metadata.File{
		ID:        uuid.New(),
		ShareName: shareName,
		ParentID:  uuid.Nil,
		Name:      shareName,
	}
	if attr != nil {
		root.FileAttr = *attr
	}
	root.Type = metadata.FileTypeDirectory
	root.Size = 0
	root.ContentID = ""
	if root.Mode == 0 {
		root.Mode = 0o755
	}
	now := time.Now()
	if root.Mtime.IsZero() {
		root.Mtime = now
	}
	root.Ctime = now

	// Validates the share name and handle length before anything is stored.
	if _, err := metadata.EncodeFileHandle(&root); err != nil {
		return nil, err
	}

	store.files[root.ID] = root
	store.children[root.ID] = make(map[string]uuid.UUID)
	store.roots[shareName] = root.ID

	return clone(root), nil
}

// GetRootHandle returns the handle of a share root.
func (store *MemoryMetadataStore) GetRootHandle(ctx context.Context, shareName string) (metadata.FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	id, ok := store.roots[shareName]
	if !ok {
		return nil, metadata.NewNotFoundError(shareName, "share")
	}
	return metadata.EncodeShareHandle(shareName, id)
}

// Healthcheck only reports context cancellation; there are no external
// dependencies.
func (store *MemoryMetadataStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}
