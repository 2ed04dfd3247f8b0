package backend

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// SampleText is the content of the "annar" sample file (123 bytes).
const SampleText = "In order to make sure that this file is exactly 123 bytes in size, I have written this text while watching its chars count."

// SampleModTime is the modification time of every sample entry.
var SampleModTime = time.Unix(1658159058, 0).UTC()

type sampleEntry struct {
	path string
	dir  bool
	mode uint32
	data string
}

// sampleTree lists parents before children.
var sampleTree = []sampleEntry{
	{path: "first", dir: true, mode: 0o775},
	{path: "first/comment", mode: 0o664},
	{path: "quatre", dir: true, mode: 0o555},
	{path: "quatre/points", mode: 0o664},
	{path: "3", mode: 0o444},
	{path: "annar", mode: 0o664, data: SampleText},
}

// SeedSample installs the sample tree under the share root:
//
//	first/          0775
//	first/comment   0664, empty
//	quatre/         0555
//	quatre/points   0664, empty
//	3               0444, empty
//	annar           0664, SampleText
//
// Entries that already exist are left alone, so seeding is idempotent.
func SeedSample(ctx context.Context, p *Provider) error {
	for _, e := range sampleTree {
		parent, name, err := p.sampleParent(ctx, e.path)
		if err != nil {
			return err
		}

		attr := &metadata.FileAttr{Type: metadata.FileTypeRegular, Mode: e.mode, Mtime: SampleModTime}
		if e.dir {
			attr.Type = metadata.FileTypeDirectory
		}
		if e.data != "" {
			id := metadata.ContentID(uuid.NewString())
			p.track(id)
			if err := p.content.WriteContent(ctx, id, []byte(e.data)); err != nil {
				p.release(id)
				return mapStoreError(err)
			}
			attr.ContentID = id
			attr.Size = uint64(len(e.data))
		}

		err = p.seedEntry(ctx, parent, name, attr)
		if attr.ContentID != "" {
			p.release(attr.ContentID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seedEntry creates one sample entry. An existing entry wins and the new
// content, if any, is dropped.
func (p *Provider) seedEntry(ctx context.Context, parent metadata.FileHandle, name string, attr *metadata.FileAttr) error {
	_, err := p.meta.Create(ctx, parent, name, attr)
	if err == nil {
		return nil
	}
	if code, ok := metadata.CodeOf(err); ok && code == metadata.ErrAlreadyExists {
		if attr.ContentID != "" {
			_ = p.content.Delete(ctx, attr.ContentID)
		}
		return nil
	}
	return mapStoreError(err)
}

// sampleParent returns the handle of the directory holding path, and the
// last path element.
func (p *Provider) sampleParent(ctx context.Context, path string) (metadata.FileHandle, string, error) {
	dir := p.rootID
	rest := path
	for {
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return dir, rest, nil
		}
		child, err := p.meta.Lookup(ctx, dir, rest[:i])
		if err != nil {
			return nil, "", mapStoreError(err)
		}
		if dir, err = metadata.EncodeFileHandle(child); err != nil {
			return nil, "", mapStoreError(err)
		}
		rest = rest[i+1:]
	}
}
