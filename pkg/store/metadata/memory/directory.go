package memory

import (
	"context"
	"sort"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ReadDirectory returns one page of the children of dirHandle, ordered by name.
//
// The token is the last name of the previous page, so pagination stays
// consistent when entries are added or removed between calls.
func (store *MemoryMetadataStore) ReadDirectory(
	ctx context.Context,
	dirHandle metadata.FileHandle,
	token string,
	limit int,
) (*metadata.ReadDirPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = metadata.DefaultPageSize
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	dir, err := store.resolveDirLocked(dirHandle)
	if err != nil {
		return nil, err
	}

	kids := store.children[dir.ID]
	names := make([]string, 0, len(kids))
	for name := range kids {
		names = append(names, name)
	}
	sort.Strings(names)

	start := 0
	if token != "" {
		start = sort.Search(len(names), func(i int) bool { return names[i] > token })
	}

	page := &metadata.ReadDirPage{}
	for i := start; i < len(names) && len(page.Entries) < limit; i++ {
		child := store.files[kids[names[i]]]
		handle, err := metadata.EncodeFileHandle(&child)
		if err != nil {
			return nil, err
		}
		page.Entries = append(page.Entries, metadata.DirEntry{
			Name:   child.Name,
			Handle: handle,
			Type:   child.Type,
		})
	}

	if consumed := start + len(page.Entries); consumed < len(names) {
		page.HasMore = true
		page.NextToken = page.Entries[len(page.Entries)-1].Name
	}

	return page, nil
}
