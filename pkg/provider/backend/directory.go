package backend

import (
	"context"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// dirHandle is a directory entry of a Provider.
type dirHandle struct {
	handle
}

// GetDirectoryHandle looks up the child directory name.
//
// Returns:
//   - provider.DirectoryHandle: The child, created when missing and opts.Create
//   - error: ErrNotFound `Directory "<name>" not found`, ErrUnknown with
//     MsgWrongEntryType when name is a file, ErrInvalidArgument for bad names
func (d *dirHandle) GetDirectoryHandle(ctx context.Context, name string, opts provider.GetDirectoryOptions) (_ provider.DirectoryHandle, err error) {
	done, err := d.p.begin(ctx, "get_directory_handle")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	// ========================================================================
	// Step 1: Look up an existing child
	// ========================================================================

	child, err := d.p.meta.Lookup(ctx, d.fh, name)
	if err == nil {
		if child.Type != metadata.FileTypeDirectory {
			return nil, wrongEntryType()
		}
		return d.p.newDirHandle(child, child.Name), nil
	}
	if !metadata.IsNotFoundError(err) {
		return nil, mapStoreError(err)
	}
	if !opts.Create {
		return nil, notFound("Directory", name)
	}

	// ========================================================================
	// Step 2: Create it
	// ========================================================================

	if err := d.p.checkWritable(name); err != nil {
		return nil, err
	}

	created, err := d.p.meta.Create(ctx, d.fh, name, &metadata.FileAttr{
		Type: metadata.FileTypeDirectory,
		Mode: 0o775,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	logger.Debug("backend: created directory %q in %s", name, d.fh)
	return d.p.newDirHandle(created, created.Name), nil
}

// GetFileHandle looks up the child file name. An existing file is returned
// unchanged even when opts.Create is set.
func (d *dirHandle) GetFileHandle(ctx context.Context, name string, opts provider.GetFileOptions) (_ provider.FileHandle, err error) {
	done, err := d.p.begin(ctx, "get_file_handle")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	child, err := d.p.meta.Lookup(ctx, d.fh, name)
	if err == nil {
		if child.Type != metadata.FileTypeRegular {
			return nil, wrongEntryType()
		}
		return d.p.newFileHandle(child), nil
	}
	if !metadata.IsNotFoundError(err) {
		return nil, mapStoreError(err)
	}
	if !opts.Create {
		return nil, notFound("File", name)
	}

	if err := d.p.checkWritable(name); err != nil {
		return nil, err
	}

	created, err := d.p.meta.Create(ctx, d.fh, name, &metadata.FileAttr{
		Type: metadata.FileTypeRegular,
		Mode: 0o664,
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	logger.Debug("backend: created file %q in %s", name, d.fh)
	return d.p.newFileHandle(created), nil
}

// RemoveEntry removes the child name. A populated directory is removed only
// with opts.Recursive, in which case every descendant and its content goes
// too.
func (d *dirHandle) RemoveEntry(ctx context.Context, name string, opts provider.RemoveOptions) (err error) {
	done, err := d.p.begin(ctx, "remove_entry")
	if err != nil {
		return err
	}
	defer func() { done(err) }()

	child, err := d.p.meta.Lookup(ctx, d.fh, name)
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return notFound("Entry", name)
		}
		return mapStoreError(err)
	}

	if err := d.p.checkWritable(name); err != nil {
		return err
	}

	if child.Type == metadata.FileTypeDirectory && opts.Recursive {
		childHandle, err := metadata.EncodeFileHandle(child)
		if err != nil {
			return mapStoreError(err)
		}
		if err := d.p.removeChildren(ctx, childHandle); err != nil {
			return err
		}
	}

	if err := d.p.removeOne(ctx, d.fh, name); err != nil {
		if code, ok := metadata.CodeOf(err); ok && code == metadata.ErrNotEmpty {
			return provider.Errorf(provider.ErrNotEmpty, "Directory \"%s\" is not empty", name)
		}
		return mapStoreError(err)
	}

	logger.Debug("backend: removed %s %q from %s (recursive=%v)", child.Type, name, d.fh, opts.Recursive)
	return nil
}

// removeChildren empties dir depth-first. It restarts from the first page
// after every batch because removals shift pagination.
func (p *Provider) removeChildren(ctx context.Context, dir metadata.FileHandle) error {
	for {
		page, err := p.meta.ReadDirectory(ctx, dir, "", p.pageSize)
		if err != nil {
			return mapStoreError(err)
		}
		if len(page.Entries) == 0 {
			return nil
		}

		for _, e := range page.Entries {
			if e.Type == metadata.FileTypeDirectory {
				if err := p.removeChildren(ctx, e.Handle); err != nil {
					return err
				}
			}
			if err := p.removeOne(ctx, dir, e.Name); err != nil {
				return mapStoreError(err)
			}
		}
	}
}

// removeOne removes a single entry and releases its content.
func (p *Provider) removeOne(ctx context.Context, parent metadata.FileHandle, name string) error {
	removed, err := p.meta.Remove(ctx, parent, name)
	if err != nil {
		return err
	}
	if removed.ContentID != "" {
		if err := p.content.Delete(ctx, removed.ContentID); err != nil {
			logger.Warn("backend: delete content %s of %q: %v", removed.ContentID, name, err)
		}
	}
	return nil
}

// Resolve returns the names leading from d to target.
//
// Handles of this provider are resolved by walking parent links upward.
// Other EntryRefs are searched breadth-first by kind and name. A target that
// is d itself resolves to an empty path; an unreachable one to nil.
func (d *dirHandle) Resolve(ctx context.Context, target provider.EntryRef) (path []string, err error) {
	done, err := d.p.begin(ctx, "resolve")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	if target == nil {
		return nil, provider.NewError(provider.ErrInvalidArgument, "Cannot resolve a null entry")
	}

	if e, ok := target.(entry); ok {
		h := e.backendEntry()
		if h.p != d.p {
			return nil, nil
		}
		return d.resolveUpward(ctx, h.id)
	}
	return d.resolveSearch(ctx, target)
}

func (d *dirHandle) resolveUpward(ctx context.Context, id uuid.UUID) ([]string, error) {
	var reversed []string
	for id != d.id {
		fh, err := metadata.EncodeShareHandle(d.p.share, id)
		if err != nil {
			return nil, mapStoreError(err)
		}
		file, err := d.p.meta.GetFile(ctx, fh)
		if err != nil {
			if metadata.IsNotFoundError(err) {
				return nil, nil
			}
			return nil, mapStoreError(err)
		}
		if file.IsRoot() {
			return nil, nil
		}
		reversed = append(reversed, file.Name)
		id = file.ParentID
	}

	path := make([]string, len(reversed))
	for i, name := range reversed {
		path[len(reversed)-1-i] = name
	}
	return path, nil
}

func (d *dirHandle) resolveSearch(ctx context.Context, target provider.EntryRef) ([]string, error) {
	type node struct {
		fh   metadata.FileHandle
		path []string
	}

	queue := []node{{fh: d.fh}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		current := queue[0]
		queue = queue[1:]

		token := ""
		for {
			page, err := d.p.meta.ReadDirectory(ctx, current.fh, token, d.p.pageSize)
			if err != nil {
				return nil, mapStoreError(err)
			}
			for _, e := range page.Entries {
				path := append(append([]string(nil), current.path...), e.Name)
				if e.Name == target.Name() && kindOf(e.Type) == target.Kind() {
					return path, nil
				}
				if e.Type == metadata.FileTypeDirectory {
					queue = append(queue, node{fh: e.Handle, path: path})
				}
			}
			if !page.HasMore {
				break
			}
			token = page.NextToken
		}
	}
	return nil, nil
}

// Entries starts a lazy enumeration of d. No page is read until the first
// call to Next.
func (d *dirHandle) Entries(ctx context.Context) (provider.DirectoryIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &dirIterator{d: d}, nil
}

func kindOf(t metadata.FileType) provider.Kind {
	if t == metadata.FileTypeDirectory {
		return provider.KindDirectory
	}
	return provider.KindFile
}
