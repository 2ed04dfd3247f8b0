package backend

import (
	"context"
	"io"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// dirIterator pages through a directory on demand.
//
// One page is buffered at a time and the next page is requested only when
// the current one is exhausted, so entries added or removed mid-iteration
// may or may not be observed.
type dirIterator struct {
	d *dirHandle

	page  []metadata.DirEntry
	idx   int
	token string

	// fetched is set once the first page has been read
	fetched bool
	// last is set once the store reported no further pages
	last   bool
	closed bool
}

// Next returns the next child, or io.EOF after the last one.
func (it *dirIterator) Next(ctx context.Context) (_ provider.DirEntry, err error) {
	if it.closed {
		return provider.DirEntry{}, provider.NewError(provider.ErrInvalidState, "Directory iterator is closed")
	}

	for it.idx >= len(it.page) {
		if it.fetched && it.last {
			return provider.DirEntry{}, io.EOF
		}
		if err := it.fetch(ctx); err != nil {
			return provider.DirEntry{}, err
		}
	}

	e := it.page[it.idx]
	it.idx++

	_, id, err := metadata.DecodeFileHandle(e.Handle)
	if err != nil {
		return provider.DirEntry{}, mapStoreError(err)
	}

	h := handle{p: it.d.p, fh: e.Handle, id: id, name: e.Name, kind: kindOf(e.Type)}
	if e.Type == metadata.FileTypeDirectory {
		return provider.DirEntry{Name: e.Name, Handle: &dirHandle{handle: h}}, nil
	}
	return provider.DirEntry{Name: e.Name, Handle: &fileHandle{handle: h}}, nil
}

func (it *dirIterator) fetch(ctx context.Context) (err error) {
	done, err := it.d.p.begin(ctx, "enumerate")
	if err != nil {
		return err
	}
	defer func() { done(err) }()

	page, err := it.d.p.meta.ReadDirectory(ctx, it.d.fh, it.token, it.d.p.pageSize)
	if err != nil {
		return mapStoreError(err)
	}

	it.page = page.Entries
	it.idx = 0
	it.token = page.NextToken
	it.fetched = true
	it.last = !page.HasMore
	return nil
}

// Close releases the buffered page. Further calls to Next fail.
func (it *dirIterator) Close() error {
	it.closed = true
	it.page = nil
	return nil
}
