package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-git/go-billy/v5/util"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// WriteAt writes data at offset, creating the file (and its shard
// directory) when missing. Writing past the end leaves a zero-filled gap.
func (s *FSContentStore) WriteAt(ctx context.Context, id metadata.ContentID, data []byte, offset int64) error {
	// ========================================================================
	// Step 1: Check context and validate arguments
	// ========================================================================

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := content.CheckWriteRange(offset, len(data)); err != nil {
		return err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return err
	}

	// ========================================================================
	// Step 2: Open (or create) and write
	// ========================================================================

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, s.fileMode)
	if err != nil {
		return fmt.Errorf("failed to open content %s: %w", id, err)
	}
	defer func() { _ = f.Close() }()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek content %s: %w", id, err)
	}
	if offset > size {
		if err := f.Truncate(offset); err != nil {
			return fmt.Errorf("failed to extend content %s: %w", id, err)
		}
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek content %s: %w", id, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write content %s: %w", id, err)
	}
	return nil
}

// WriteContent replaces the content file with data.
func (s *FSContentStore) WriteContent(ctx context.Context, id metadata.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := util.WriteFile(s.fs, path, data, s.fileMode); err != nil {
		return fmt.Errorf("failed to write content %s: %w", id, err)
	}
	return nil
}

// Truncate resizes an existing content file.
func (s *FSContentStore) Truncate(ctx context.Context, id metadata.ContentID, newSize uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := content.CheckSize(newSize); err != nil {
		return err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fs.OpenFile(path, os.O_RDWR, s.fileMode)
	if err != nil {
		return mapNotExist(id, err)
	}
	defer func() { _ = f.Close() }()

	if err := f.Truncate(int64(newSize)); err != nil {
		return fmt.Errorf("failed to truncate content %s: %w", id, err)
	}
	return nil
}

// Delete removes the content file. A missing file is not an error.
func (s *FSContentStore) Delete(ctx context.Context, id metadata.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}
	return nil
}
