package badger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	xdr "github.com/rasky/go-xdr/xdr2"
)

// Serialization Strategy
// ======================
//
// Entry records are encoded with XDR (RFC 4506): compact, big-endian, and
// fixed-layout, which suits the small, frequently read records of the
// entry tree. UUID values stored under children and share keys are the raw
// 16 bytes.

// recordVersion is written first in every record so the layout can evolve.
const recordVersion uint32 = 1

// fileRecord is the on-disk form of metadata.File.
type fileRecord struct {
	Version   uint32
	ID        []byte
	ParentID  []byte
	ShareName string
	Name      string
	Type      uint32
	Mode      uint32
	Size      uint64
	MtimeNs   int64
	CtimeNs   int64
	ContentID string
}

// encodeFile serializes f to XDR bytes.
func encodeFile(f *metadata.File) ([]byte, error) {
	rec := fileRecord{
		Version:   recordVersion,
		ID:        f.ID[:],
		ParentID:  f.ParentID[:],
		ShareName: f.ShareName,
		Name:      f.Name,
		Type:      uint32(f.Type),
		Mode:      f.Mode,
		Size:      f.Size,
		MtimeNs:   f.Mtime.UnixNano(),
		CtimeNs:   f.Ctime.UnixNano(),
		ContentID: string(f.ContentID),
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode file record: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeFile deserializes a metadata.File from XDR bytes.
func decodeFile(data []byte) (*metadata.File, error) {
	var rec fileRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode file record: %w", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("unsupported file record version %d", rec.Version)
	}

	id, err := uuid.FromBytes(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid file id: %w", err)
	}
	parentID, err := uuid.FromBytes(rec.ParentID)
	if err != nil {
		return nil, fmt.Errorf("invalid parent id: %w", err)
	}

	return &metadata.File{
		ID:        id,
		ShareName: rec.ShareName,
		ParentID:  parentID,
		Name:      rec.Name,
		FileAttr: metadata.FileAttr{
			Type:      metadata.FileType(rec.Type),
			Mode:      rec.Mode,
			Size:      rec.Size,
			Mtime:     time.Unix(0, rec.MtimeNs),
			Ctime:     time.Unix(0, rec.CtimeNs),
			ContentID: metadata.ContentID(rec.ContentID),
		},
	}, nil
}

// decodeUUID reads a raw 16-byte UUID value.
func decodeUUID(val []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid UUID value (%d bytes): %w", len(val), err)
	}
	return id, nil
}
