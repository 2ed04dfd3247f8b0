package backend

import (
	"context"
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// sniffLength is how many leading bytes are read to detect a MIME type.
const sniffLength = 3072

// fileHandle is a regular file entry of a Provider.
type fileHandle struct {
	handle
}

// GetFile snapshots the current entry. Reads from the snapshot see the bytes
// published when it was taken; a later commit makes them fail with
// ErrInvalidState.
func (f *fileHandle) GetFile(ctx context.Context) (_ provider.File, err error) {
	done, err := f.p.begin(ctx, "get_file")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	file, err := f.p.meta.GetFile(ctx, f.fh)
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return nil, notFound("File", f.name)
		}
		return nil, mapStoreError(err)
	}

	snap := &fileSnapshot{
		p:         f.p,
		name:      f.name,
		size:      int64(file.Size),
		mtime:     file.Mtime,
		contentID: file.ContentID,
	}
	snap.mimeType = snap.detectType(ctx)
	return snap, nil
}

// CreateWritable opens a writable stream staging into a new content object.
//
// With opts.KeepExistingData the current bytes are copied into the stage
// first. The stream starts unlocked.
func (f *fileHandle) CreateWritable(ctx context.Context, opts provider.CreateWritableOptions) (_ provider.WritableFileStream, err error) {
	done, err := f.p.begin(ctx, "create_writable")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	if err := f.p.checkWritable(f.name); err != nil {
		return nil, err
	}

	file, err := f.p.meta.GetFile(ctx, f.fh)
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return nil, notFound("File", f.name)
		}
		return nil, mapStoreError(err)
	}
	if file.Mode&0o222 == 0 {
		return nil, provider.Errorf(provider.ErrPermissionDenied, "File \"%s\" is read-only", f.name)
	}

	swap := metadata.ContentID(uuid.NewString())
	size := int64(0)

	f.p.track(swap)
	if opts.KeepExistingData && file.ContentID != "" {
		if err := content.CopyContent(ctx, f.p.content, file.ContentID, swap); err != nil {
			f.p.release(swap)
			return nil, mapStoreError(err)
		}
		size = int64(file.Size)
	} else if err := f.p.content.WriteContent(ctx, swap, nil); err != nil {
		f.p.release(swap)
		return nil, mapStoreError(err)
	}

	f.p.metrics.StreamOpened()
	logger.Debug("backend: opened writable stream on %q (swap=%s keep=%v)", f.name, swap, opts.KeepExistingData)

	return newWritableStream(f, swap, size), nil
}

// fileSnapshot implements provider.File.
type fileSnapshot struct {
	p         *Provider
	name      string
	mimeType  string
	size      int64
	mtime     time.Time
	contentID metadata.ContentID
}

func (s *fileSnapshot) Name() string            { return s.name }
func (s *fileSnapshot) Type() string            { return s.mimeType }
func (s *fileSnapshot) Size() int64             { return s.size }
func (s *fileSnapshot) LastModified() time.Time { return s.mtime }
func (s *fileSnapshot) PreferredReadSize() int  { return s.p.readSize }

// ReadRange reads up to length bytes at offset, never past the snapshot size.
func (s *fileSnapshot) ReadRange(ctx context.Context, offset, length int64) (_ []byte, err error) {
	done, err := s.p.begin(ctx, "read")
	if err != nil {
		return nil, err
	}
	defer func() { done(err) }()

	if offset < 0 || length < 0 {
		return nil, provider.Errorf(provider.ErrInvalidArgument, "Invalid range %d+%d", offset, length)
	}
	if offset >= s.size || length == 0 || s.contentID == "" {
		return []byte{}, nil
	}
	if offset+length > s.size {
		length = s.size - offset
	}

	data, err := s.p.content.ReadAt(ctx, s.contentID, offset, int(length))
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			return nil, provider.Errorf(provider.ErrInvalidState, "File \"%s\" was modified after it was read", s.name)
		}
		return nil, mapStoreError(err)
	}

	s.p.metrics.RecordBytesTransferred("read", uint64(len(data)))
	return data, nil
}

// detectType resolves the MIME type from the extension, falling back to
// sniffing the first bytes. Parameters such as charset are dropped and
// unknown binary content reports "".
func (s *fileSnapshot) detectType(ctx context.Context) string {
	if ext := filepath.Ext(s.name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return stripParams(t)
		}
	}
	if s.size == 0 || s.contentID == "" {
		return ""
	}

	head, err := s.p.content.ReadAt(ctx, s.contentID, 0, int(min(s.size, sniffLength)))
	if err != nil {
		logger.Debug("backend: sniff type of %q: %v", s.name, err)
		return ""
	}

	t := stripParams(mimetype.Detect(head).String())
	if t == "application/octet-stream" {
		return ""
	}
	return t
}

func stripParams(mediaType string) string {
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.TrimSpace(mediaType)
}
