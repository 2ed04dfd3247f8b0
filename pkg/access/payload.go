package access

import (
	"context"
	"encoding/binary"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// Payload is a value accepted by WritableFileStream.Write and Writer.Write.
//
// The set is closed: Bytes, Text, ByteWindow, Typed[T], *Blob, *File and
// WriteCommand.
type Payload interface {
	payload()
}

// Bytes writes raw bytes.
type Bytes []byte

// Text writes the UTF-8 encoding of a string.
type Text string

// ByteWindow writes Length bytes of Buf starting at Offset.
type ByteWindow struct {
	Buf    []byte
	Offset int
	Length int
}

// Numeric is the element type of a Typed payload.
type Numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Typed writes each value in little-endian order.
type Typed[T Numeric] struct {
	Values []T
}

// CommandType selects the action of a WriteCommand.
type CommandType = provider.WriteType

const (
	CommandWrite    = provider.WriteTypeWrite
	CommandSeek     = provider.WriteTypeSeek
	CommandTruncate = provider.WriteTypeTruncate
)

// WriteCommand is a structured write, seek or truncate.
//
// An empty Type means CommandWrite. Data may be any non-command payload;
// content views are read before the command is forwarded.
type WriteCommand struct {
	Type     CommandType
	Data     Payload
	Position *int64
	Size     *int64
}

func (Bytes) payload()        {}
func (Text) payload()         {}
func (ByteWindow) payload()   {}
func (Typed[T]) payload()     {}
func (*Blob) payload()        {}
func (WriteCommand) payload() {}

// encode serializes the values of a Typed payload.
func (t Typed[T]) encode() ([]byte, error) {
	return binary.Append(make([]byte, 0, len(t.Values)*binary.Size(*new(T))), binary.LittleEndian, t.Values)
}

type encoder interface {
	encode() ([]byte, error)
}

// Int64 returns a pointer to v, for WriteCommand fields.
func Int64(v int64) *int64 { return &v }

// toWriteParams turns a payload into the provider command it stands for.
func toWriteParams(ctx context.Context, p Payload) (provider.WriteParams, error) {
	if ptr, isPtr := p.(*WriteCommand); isPtr && ptr != nil {
		p = *ptr
	}

	cmd, ok := p.(WriteCommand)
	if !ok {
		data, err := materialize(ctx, p)
		if err != nil {
			return provider.WriteParams{}, err
		}
		return provider.WriteParams{Type: provider.WriteTypeWrite, Data: data}, nil
	}

	params := provider.WriteParams{
		Type:     cmd.Type,
		Position: cmd.Position,
		Size:     cmd.Size,
	}
	if cmd.Data != nil {
		switch cmd.Data.(type) {
		case WriteCommand, *WriteCommand:
			return provider.WriteParams{}, provider.NewError(provider.ErrInvalidArgument, "Write command data must not be a command")
		}
		data, err := materialize(ctx, cmd.Data)
		if err != nil {
			return provider.WriteParams{}, err
		}
		params.Data = data
	}
	return params, nil
}

// materialize returns the bytes a non-command payload stands for. Content
// views are read through the provider; they are never forwarded by
// reference.
func materialize(ctx context.Context, p Payload) ([]byte, error) {
	switch v := p.(type) {
	case nil:
		return nil, provider.NewError(provider.ErrInvalidArgument, "Write payload must not be null")
	case Bytes:
		if v == nil {
			return []byte{}, nil
		}
		return []byte(v), nil
	case Text:
		return []byte(v), nil
	case ByteWindow:
		if v.Offset < 0 || v.Length < 0 || v.Offset > len(v.Buf) || v.Length > len(v.Buf)-v.Offset {
			return nil, provider.Errorf(provider.ErrInvalidArgument,
				"Byte window %d+%d is outside a %d byte buffer", v.Offset, v.Length, len(v.Buf))
		}
		return v.Buf[v.Offset : v.Offset+v.Length], nil
	case *File:
		if v == nil {
			return nil, provider.NewError(provider.ErrInvalidArgument, "Write payload must not be null")
		}
		return v.ArrayBuffer(ctx)
	case *Blob:
		if v == nil {
			return nil, provider.NewError(provider.ErrInvalidArgument, "Write payload must not be null")
		}
		return v.ArrayBuffer(ctx)
	case encoder:
		data, err := v.encode()
		if err != nil {
			return nil, provider.Wrap(provider.ErrInvalidArgument, err)
		}
		return data, nil
	default:
		return nil, provider.Errorf(provider.ErrInvalidArgument, "Unsupported write payload %T", p)
	}
}
