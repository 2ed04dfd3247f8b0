package access

import (
	"context"
	"sync"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// FileHandle is the adapter for a provider file handle. It holds no bytes.
type FileHandle struct {
	Handle
	file provider.FileHandle
}

// GetFile returns a content view over the file's current bytes.
func (f *FileHandle) GetFile(ctx context.Context) (*File, error) {
	snap, err := f.file.GetFile(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return newFile(snap), nil
}

// CreateWritable opens a writable stream on the file. A nil opts means
// KeepExistingData false: the stream starts empty.
//
// The returned stream's Locked value is whatever the provider reports.
func (f *FileHandle) CreateWritable(ctx context.Context, opts *CreateWritableOptions) (*WritableFileStream, error) {
	var o CreateWritableOptions
	if opts != nil {
		o = *opts
	}

	raw, err := f.file.CreateWritable(ctx, o)
	if err != nil {
		return nil, translateError(err)
	}
	return &WritableFileStream{raw: raw, lock: &writerLock{}}, nil
}

// writerLock is the single cell recording which Writer holds a stream. The
// stream and its writer share one instance; only Writer.ReleaseLock clears
// it.
type writerLock struct {
	mu     sync.Mutex
	holder *Writer
}

func (l *writerLock) held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holder != nil
}
