package access

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// Blob is a read-only view over a byte range of a file snapshot.
//
// A Blob never holds bytes. ArrayBuffer, Text and Stream read the range from
// the provider when called.
type Blob struct {
	src         provider.File
	start, end  int64
	contentType string
}

// File is the Blob covering a whole file, plus the file's name and
// modification time.
type File struct {
	Blob
	name         string
	lastModified time.Time
}

func newFile(snap provider.File) *File {
	return &File{
		Blob: Blob{
			src:         snap,
			start:       0,
			end:         max(snap.Size(), 0),
			contentType: snap.Type(),
		},
		name:         snap.Name(),
		lastModified: snap.LastModified(),
	}
}

// Name returns the file name.
func (f *File) Name() string { return f.name }

// LastModified returns the modification time reported by the provider.
func (f *File) LastModified() time.Time { return f.lastModified }

// WebkitRelativePath is always ".".
func (f *File) WebkitRelativePath() string { return "." }

// Size returns the length of the view in bytes.
func (b *Blob) Size() int64 { return b.end - b.start }

// Type returns the view's MIME type. Slices carry the type given to Slice,
// "" by default.
func (b *Blob) Type() string { return b.contentType }

// SliceOption sets one argument of Blob.Slice.
type SliceOption func(*sliceArgs)

type sliceArgs struct {
	start, end  *int64
	contentType string
}

// From sets the start of a slice. Negative values count from the end.
func From(start int64) SliceOption {
	return func(a *sliceArgs) { a.start = &start }
}

// To sets the exclusive end of a slice. Negative values count from the end.
func To(end int64) SliceOption {
	return func(a *sliceArgs) { a.end = &end }
}

// ContentType sets the MIME type of a slice. It is stored verbatim.
func ContentType(contentType string) SliceOption {
	return func(a *sliceArgs) { a.contentType = contentType }
}

// Slice derives a view over part of b, with Array.prototype.slice bounds:
// an omitted start is 0, an omitted end is b.Size(), a negative bound v
// means max(b.Size()+v, 0), bounds past the end are clamped, and an end
// before the start yields an empty view. Bounds are relative to b, not to
// the underlying file.
func (b *Blob) Slice(opts ...SliceOption) *Blob {
	var args sliceArgs
	for _, opt := range opts {
		opt(&args)
	}

	size := b.Size()
	start := int64(0)
	if args.start != nil {
		start = relativeIndex(*args.start, size)
	}
	end := size
	if args.end != nil {
		end = relativeIndex(*args.end, size)
	}
	length := max(end-start, 0)

	return &Blob{
		src:         b.src,
		start:       b.start + start,
		end:         b.start + start + length,
		contentType: args.contentType,
	}
}

func relativeIndex(v, size int64) int64 {
	if v < 0 {
		return max(size+v, 0)
	}
	return min(v, size)
}

// ArrayBuffer reads the bytes of the view with a single provider read.
func (b *Blob) ArrayBuffer(ctx context.Context) ([]byte, error) {
	if b.Size() == 0 {
		return []byte{}, nil
	}
	data, err := b.src.ReadRange(ctx, b.start, b.Size())
	if err != nil {
		return nil, translateError(err)
	}
	return data, nil
}

// Text reads the view and decodes it as UTF-8. Invalid sequences become
// U+FFFD.
func (b *Blob) Text(ctx context.Context) (string, error) {
	data, err := b.ArrayBuffer(ctx)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

// Stream returns a new reader over the view. Each call returns an
// independent reader; a reader is locked to its caller from the start.
func (b *Blob) Stream(ctx context.Context) *ReadableStream {
	chunk := b.src.PreferredReadSize()
	if chunk <= 0 {
		chunk = provider.DefaultReadSize
	}
	return &ReadableStream{ctx: ctx, src: b.src, pos: b.start, end: b.end, chunk: chunk}
}

// ReadableStream reads a view one provider chunk at a time.
type ReadableStream struct {
	ctx      context.Context
	src      provider.File
	pos, end int64
	chunk    int
	buf      []byte
	closed   bool
}

// Locked is always true: a stream is bound to the reader that requested it.
func (s *ReadableStream) Locked() bool { return true }

// Read implements io.Reader. A provider chunk is requested only when the
// previous one has been consumed.
func (s *ReadableStream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errors.New("read from closed stream")
	}
	if len(p) == 0 {
		return 0, nil
	}

	if len(s.buf) == 0 {
		if s.pos >= s.end {
			return 0, io.EOF
		}
		n := min(int64(s.chunk), s.end-s.pos)
		data, err := s.src.ReadRange(s.ctx, s.pos, n)
		if err != nil {
			return 0, translateError(err)
		}
		if len(data) == 0 {
			// The file shrank under us.
			s.pos = s.end
			return 0, io.EOF
		}
		s.pos += int64(len(data))
		s.buf = data
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Close releases the buffered chunk.
func (s *ReadableStream) Close() error {
	s.closed = true
	s.buf = nil
	return nil
}
