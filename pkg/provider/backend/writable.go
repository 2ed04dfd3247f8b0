package backend

import (
	"context"
	"sync"
	"time"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

type streamState int

const (
	streamOpen streamState = iota
	streamClosed
	streamAborted
)

// writableStream stages writes in a swap content object and publishes it on
// Close.
//
// Lock protocol: writer is non-nil exactly while a Writer holds the stream.
// Stream-level operations are refused in that window; the writer's own
// operations go through the same unexported methods with the lock check
// skipped.
type writableStream struct {
	f    *fileHandle
	swap metadata.ContentID

	mu     sync.Mutex
	state  streamState
	size   int64
	cursor int64
	writer *streamWriter

	// done is closed when the stream reaches a terminal state
	done chan struct{}
}

func newWritableStream(f *fileHandle, swap metadata.ContentID, size int64) *writableStream {
	return &writableStream{
		f:    f,
		swap: swap,
		size: size,
		done: make(chan struct{}),
	}
}

// Locked reports whether a Writer currently holds the stream.
func (s *writableStream) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer != nil
}

func (s *writableStream) Write(ctx context.Context, params provider.WriteParams) error {
	return s.run(ctx, "write", nil, func() error { return s.apply(ctx, params) })
}

func (s *writableStream) Seek(ctx context.Context, position int64) error {
	return s.run(ctx, "seek", nil, func() error {
		return s.apply(ctx, provider.WriteParams{Type: provider.WriteTypeSeek, Position: &position})
	})
}

func (s *writableStream) Truncate(ctx context.Context, size int64) error {
	return s.run(ctx, "truncate", nil, func() error {
		return s.apply(ctx, provider.WriteParams{Type: provider.WriteTypeTruncate, Size: &size})
	})
}

func (s *writableStream) Close(ctx context.Context) error {
	return s.run(ctx, "close", nil, func() error { return s.commit(ctx) })
}

func (s *writableStream) Abort(ctx context.Context, reason string) (string, error) {
	err := s.run(ctx, "abort", nil, func() error { return s.discard(ctx, reason) })
	if err != nil {
		return "", err
	}
	return reason, nil
}

// GetWriter locks the stream.
//
// Returns ErrLockConflict with MsgWriterLocked when a writer already holds it.
func (s *writableStream) GetWriter(ctx context.Context) (provider.Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writer != nil {
		return nil, provider.NewError(provider.ErrLockConflict, provider.MsgWriterLocked)
	}

	ready := make(chan struct{})
	close(ready)

	s.writer = &streamWriter{s: s, ready: ready}
	return s.writer, nil
}

// run executes op under the stream mutex after the limiter, state and lock
// checks. owner is the writer issuing the call, or nil for the stream itself.
func (s *writableStream) run(ctx context.Context, name string, owner *streamWriter, op func() error) (err error) {
	done, err := s.f.p.begin(ctx, name)
	if err != nil {
		return err
	}
	defer func() { done(err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if owner != nil && s.writer != owner {
		return provider.NewError(provider.ErrInvalidState, "Writer lock has been released")
	}
	if owner == nil && s.writer != nil {
		return provider.NewError(provider.ErrLockConflict, provider.MsgWriterLocked)
	}
	if s.state != streamOpen {
		return provider.NewError(provider.ErrInvalidState, "Writable file stream is closed")
	}
	return op()
}

// apply executes one write command. The caller holds s.mu.
func (s *writableStream) apply(ctx context.Context, params provider.WriteParams) error {
	p := s.f.p

	switch params.Type {
	case "", provider.WriteTypeWrite:
		if params.Data == nil {
			return provider.NewError(provider.ErrInvalidArgument, "Write command requires data")
		}
		pos := s.cursor
		if params.Position != nil {
			pos = *params.Position
		}
		if pos < 0 {
			return provider.Errorf(provider.ErrInvalidArgument, "Invalid position %d", pos)
		}
		if err := p.content.WriteAt(ctx, s.swap, params.Data, pos); err != nil {
			return mapStoreError(err)
		}
		p.metrics.RecordBytesTransferred("write", uint64(len(params.Data)))
		s.cursor = pos + int64(len(params.Data))
		s.size = max(s.size, s.cursor)
		return nil

	case provider.WriteTypeSeek:
		if params.Position == nil {
			return provider.NewError(provider.ErrInvalidArgument, "Seek command requires a position")
		}
		pos := *params.Position
		if pos < 0 {
			return provider.Errorf(provider.ErrInvalidArgument, "Invalid position %d", pos)
		}
		if pos > s.size {
			return provider.NewError(provider.ErrOutOfRange, provider.MsgSeekPastSize)
		}
		s.cursor = pos
		return nil

	case provider.WriteTypeTruncate:
		if params.Size == nil {
			return provider.NewError(provider.ErrInvalidArgument, "Truncate command requires a size")
		}
		size := *params.Size
		if size < 0 {
			return provider.Errorf(provider.ErrInvalidArgument, "Invalid size %d", size)
		}
		if err := p.content.Truncate(ctx, s.swap, uint64(size)); err != nil {
			return mapStoreError(err)
		}
		s.size = size
		s.cursor = min(s.cursor, size)
		return nil

	default:
		return provider.Errorf(provider.ErrInvalidArgument, "Unknown write command type \"%s\"", params.Type)
	}
}

// commit publishes the swap content as the file's bytes. The caller holds
// s.mu. On failure the stream stays open so the caller may retry or abort.
func (s *writableStream) commit(ctx context.Context) error {
	p := s.f.p

	current, err := p.meta.GetFile(ctx, s.f.fh)
	if err != nil {
		if metadata.IsNotFoundError(err) {
			return notFound("File", s.f.name)
		}
		return mapStoreError(err)
	}

	now := time.Now()
	if _, err := p.meta.SetFileAttributes(ctx, s.f.fh, &metadata.SetAttrs{
		Size:      metadata.Uint64Ptr(uint64(s.size)),
		Mtime:     &now,
		ContentID: metadata.ContentIDPtr(s.swap),
	}); err != nil {
		return mapStoreError(err)
	}

	if current.ContentID != "" && current.ContentID != s.swap {
		if err := p.content.Delete(ctx, current.ContentID); err != nil {
			logger.Warn("backend: delete replaced content %s of %q: %v", current.ContentID, s.f.name, err)
		}
	}

	s.finish(streamClosed, "commit")
	logger.Debug("backend: committed %d bytes to %q", s.size, s.f.name)
	return nil
}

// discard drops the swap content. The caller holds s.mu.
func (s *writableStream) discard(ctx context.Context, reason string) error {
	if err := s.f.p.content.Delete(ctx, s.swap); err != nil {
		return mapStoreError(err)
	}

	s.finish(streamAborted, "abort")
	logger.Debug("backend: aborted writable stream on %q: %s", s.f.name, reason)
	return nil
}

func (s *writableStream) finish(state streamState, outcome string) {
	s.state = state
	s.f.p.release(s.swap)
	close(s.done)
	s.f.p.metrics.StreamFinished(outcome)
}

// streamWriter holds the lock of a writableStream.
type streamWriter struct {
	s     *writableStream
	ready chan struct{}
}

func (w *streamWriter) Ready() <-chan struct{}  { return w.ready }
func (w *streamWriter) Closed() <-chan struct{} { return w.s.done }

// DesiredSize reports the current byte length of the pending content.
func (w *streamWriter) DesiredSize(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if w.s.writer != w {
		return 0, provider.NewError(provider.ErrInvalidState, "Writer lock has been released")
	}
	return w.s.size, nil
}

func (w *streamWriter) Write(ctx context.Context, params provider.WriteParams) error {
	return w.s.run(ctx, "write", w, func() error { return w.s.apply(ctx, params) })
}

func (w *streamWriter) Close(ctx context.Context) error {
	return w.s.run(ctx, "close", w, func() error { return w.s.commit(ctx) })
}

func (w *streamWriter) Abort(ctx context.Context, reason string) (string, error) {
	err := w.s.run(ctx, "abort", w, func() error { return w.s.discard(ctx, reason) })
	if err != nil {
		return "", err
	}
	return reason, nil
}

// ReleaseLock unlocks the stream. Releasing twice is a no-op.
func (w *streamWriter) ReleaseLock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if w.s.writer == w {
		w.s.writer = nil
	}
	return nil
}
