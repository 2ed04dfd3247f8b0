package badger

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// CreateRootDirectory creates the root directory of a share.
//
// Idempotent: on restart the persisted root is returned unchanged.
func (s *BadgerMetadataStore) CreateRootDirectory(
	ctx context.Context,
	shareName string,
	attr *metadata.FileAttr,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var root *metadata.File
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := rootTxn(txn, shareName)
		if err == nil {
			root = existing
			return nil
		}
		if !metadata.IsNotFoundError(err) {
			return err
		}

		root = &metadata.File{
			ID:        uuid.New(),
			ShareName: shareName,
			ParentID:  uuid.Nil,
			Name:      shareName,
		}
		if attr != nil {
			root.FileAttr = *attr
		}
		root.Type = metadata.FileTypeDirectory
		root.Size = 0
		root.ContentID = ""
		if root.Mode == 0 {
			root.Mode = 0o755
		}
		now := time.Now()
		if root.Mtime.IsZero() {
			root.Mtime = now
		}
		root.Ctime = now

		if _, err := metadata.EncodeFileHandle(root); err != nil {
			return err
		}
		if err := putFileTxn(txn, root); err != nil {
			return err
		}
		if err := txn.Set(keyShare(shareName), root.ID[:]); err != nil {
			return ioError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

// GetRootHandle returns the handle of a share root.
func (s *BadgerMetadataStore) GetRootHandle(ctx context.Context, shareName string) (metadata.FileHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var handle metadata.FileHandle
	err := s.db.View(func(txn *badger.Txn) error {
		root, err := rootTxn(txn, shareName)
		if err != nil {
			return err
		}
		handle, err = metadata.EncodeFileHandle(root)
		return err
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// rootTxn loads the root entry of shareName.
func rootTxn(txn *badger.Txn, shareName string) (*metadata.File, error) {
	item, err := txn.Get(keyShare(shareName))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, metadata.NewNotFoundError(shareName, "share")
	}
	if err != nil {
		return nil, ioError(err)
	}

	var rootID uuid.UUID
	err = item.Value(func(val []byte) error {
		rootID, err = decodeUUID(val)
		return err
	})
	if err != nil {
		return nil, ioError(err)
	}
	return getFileTxn(txn, keyFile(rootID), shareName)
}
