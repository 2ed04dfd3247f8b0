package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ReadAt reads up to length bytes starting at offset.
func (s *FSContentStore) ReadAt(ctx context.Context, id metadata.ContentID, offset int64, length int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset %d: %w", offset, content.ErrInvalidOffset)
	}
	if length < 0 {
		return nil, fmt.Errorf("length %d: %w", length, content.ErrInvalidSize)
	}

	path, err := s.contentPath(id)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, mapNotExist(id, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read content %s: %w", id, err)
	}
	return buf[:n], nil
}

// ReadContent opens the content file for sequential reading.
func (s *FSContentStore) ReadContent(ctx context.Context, id metadata.ContentID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, mapNotExist(id, err)
	}
	return f, nil
}

// GetContentSize stats the content file.
func (s *FSContentStore) GetContentSize(ctx context.Context, id metadata.ContentID) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return 0, err
	}

	info, err := s.fs.Stat(path)
	if err != nil {
		return 0, mapNotExist(id, err)
	}
	return uint64(info.Size()), nil
}

// ContentExists stats the content file; a missing file is (false, nil).
func (s *FSContentStore) ContentExists(ctx context.Context, id metadata.ContentID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	path, err := s.contentPath(id)
	if err != nil {
		return false, err
	}

	_, err = s.fs.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat content %s: %w", id, err)
	}
	return true, nil
}

// mapNotExist converts os.ErrNotExist into content.ErrContentNotFound.
func mapNotExist(id metadata.ContentID, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("content %s: %w", id, content.ErrContentNotFound)
	}
	return fmt.Errorf("content %s: %w", id, err)
}
