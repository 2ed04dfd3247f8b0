package memory

import (
	"context"
	"slices"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// GetAllContentIDs returns the sorted ContentIDs of all regular files.
func (store *MemoryMetadataStore) GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	seen := make(map[metadata.ContentID]struct{})
	for _, file := range store.files {
		if file.Type == metadata.FileTypeRegular && file.ContentID != "" {
			seen[file.ContentID] = struct{}{}
		}
	}

	ids := make([]metadata.ContentID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
