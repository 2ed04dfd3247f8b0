package access

import (
	"context"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// WritableFileStream is the adapter for a provider writable stream.
//
// Writes are staged by the provider and published by Close. At most one
// Writer holds the stream at a time.
type WritableFileStream struct {
	raw  provider.WritableFileStream
	lock *writerLock
}

// Locked reports whether a writer holds the stream, or whether the provider
// reports it locked.
func (s *WritableFileStream) Locked() bool {
	return s.lock.held() || s.raw.Locked()
}

// Write writes p at the cursor, or executes it when p is a WriteCommand.
func (s *WritableFileStream) Write(ctx context.Context, p Payload) error {
	params, err := toWriteParams(ctx, p)
	if err != nil {
		return err
	}
	return translateError(s.raw.Write(ctx, params))
}

// Seek moves the cursor. A position past the current length fails with
// ErrOutOfRange "Seeking past size".
func (s *WritableFileStream) Seek(ctx context.Context, position int64) error {
	return translateError(s.raw.Seek(ctx, position))
}

// Truncate resizes the pending content to size bytes.
func (s *WritableFileStream) Truncate(ctx context.Context, size int64) error {
	return translateError(s.raw.Truncate(ctx, size))
}

// Close publishes the pending content.
func (s *WritableFileStream) Close(ctx context.Context) error {
	return translateError(s.raw.Close(ctx))
}

// Abort discards the pending content and returns reason.
func (s *WritableFileStream) Abort(ctx context.Context, reason string) (string, error) {
	got, err := s.raw.Abort(ctx, reason)
	if err != nil {
		return "", translateError(err)
	}
	return got, nil
}

// GetWriter locks the stream for a new Writer.
//
// Fails with ErrLockConflict "Writable file stream locked by another writer"
// when the stream is already locked; the current holder keeps the lock.
func (s *WritableFileStream) GetWriter(ctx context.Context) (*Writer, error) {
	s.lock.mu.Lock()
	defer s.lock.mu.Unlock()

	if s.lock.holder != nil || s.raw.Locked() {
		return nil, provider.NewError(provider.ErrLockConflict, provider.MsgWriterLocked)
	}

	raw, err := s.raw.GetWriter(ctx)
	if err != nil {
		return nil, translateError(err)
	}

	w := &Writer{raw: raw, lock: s.lock}
	s.lock.holder = w
	return w, nil
}

// Writer is the exclusive writer of a WritableFileStream.
type Writer struct {
	raw  provider.Writer
	lock *writerLock
}

// Ready is closed once the writer accepts writes.
func (w *Writer) Ready() <-chan struct{} { return w.raw.Ready() }

// Closed is closed when the stream is closed or aborted.
func (w *Writer) Closed() <-chan struct{} { return w.raw.Closed() }

// DesiredSize relays the provider's desired size.
func (w *Writer) DesiredSize(ctx context.Context) (int64, error) {
	size, err := w.raw.DesiredSize(ctx)
	return size, translateError(err)
}

// Write writes p at the cursor, or executes it when p is a WriteCommand.
func (w *Writer) Write(ctx context.Context, p Payload) error {
	params, err := toWriteParams(ctx, p)
	if err != nil {
		return err
	}
	return translateError(w.raw.Write(ctx, params))
}

// Close publishes the pending content.
func (w *Writer) Close(ctx context.Context) error {
	return translateError(w.raw.Close(ctx))
}

// Abort discards the pending content and returns reason.
func (w *Writer) Abort(ctx context.Context, reason string) (string, error) {
	got, err := w.raw.Abort(ctx, reason)
	if err != nil {
		return "", translateError(err)
	}
	return got, nil
}

// ReleaseLock unlocks the stream.
//
// The provider lock and the stream's holder are released together under the
// lock mutex: if the provider refuses, the holder is kept and both still
// report the stream locked. Releasing a writer that no longer holds the
// lock is a no-op.
func (w *Writer) ReleaseLock(ctx context.Context) error {
	w.lock.mu.Lock()
	defer w.lock.mu.Unlock()

	if w.lock.holder != w {
		return nil
	}
	if err := w.raw.ReleaseLock(ctx); err != nil {
		return translateError(err)
	}
	w.lock.holder = nil
	return nil
}
