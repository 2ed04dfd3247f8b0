package badger

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// GetFile returns the entry referenced by handle.
func (s *BadgerMetadataStore) GetFile(ctx context.Context, handle metadata.FileHandle) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var file *metadata.File
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		file, err = resolveTxn(txn, handle)
		return err
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Lookup returns the child named name of dirHandle.
func (s *BadgerMetadataStore) Lookup(ctx context.Context, dirHandle metadata.FileHandle, name string) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}

	var child *metadata.File
	err := s.db.View(func(txn *badger.Txn) error {
		dir, err := resolveDirTxn(txn, dirHandle)
		if err != nil {
			return err
		}
		child, err = childTxn(txn, dir.ID, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// Create adds a new entry named name under parentHandle.
func (s *BadgerMetadataStore) Create(
	ctx context.Context,
	parentHandle metadata.FileHandle,
	name string,
	attr *metadata.FileAttr,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}
	if attr == nil {
		return nil, metadata.NewStoreError(metadata.ErrInvalidArgument, "nil attributes", name)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var file *metadata.File
	err := s.db.Update(func(txn *badger.Txn) error {
		parent, err := resolveDirTxn(txn, parentHandle)
		if err != nil {
			return err
		}

		_, err = txn.Get(keyChild(parent.ID, name))
		if err == nil {
			return metadata.NewStoreError(metadata.ErrAlreadyExists, "entry already exists", name)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return ioError(err)
		}

		now := time.Now()
		file = &metadata.File{
			ID:        uuid.New(),
			ShareName: parent.ShareName,
			ParentID:  parent.ID,
			Name:      name,
			FileAttr:  *attr,
		}
		file.Mode &= 0o777
		if file.Mtime.IsZero() {
			file.Mtime = now
		}
		file.Ctime = now
		if file.Type == metadata.FileTypeDirectory {
			file.Size = 0
			file.ContentID = ""
		}

		if err := putFileTxn(txn, file); err != nil {
			return err
		}
		if err := txn.Set(keyChild(parent.ID, name), file.ID[:]); err != nil {
			return ioError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// SetFileAttributes updates selected attributes of an entry.
func (s *BadgerMetadataStore) SetFileAttributes(
	ctx context.Context,
	handle metadata.FileHandle,
	attrs *metadata.SetAttrs,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var file *metadata.File
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		file, err = resolveTxn(txn, handle)
		if err != nil {
			return err
		}
		if err := metadata.ApplySetAttrs(&file.FileAttr, attrs, time.Now()); err != nil {
			return err
		}
		return putFileTxn(txn, file)
	})
	if err != nil {
		return nil, err
	}
	return file, nil
}

// childTxn loads the child named name of directory parentID.
func childTxn(txn *badger.Txn, parentID uuid.UUID, name string) (*metadata.File, error) {
	item, err := txn.Get(keyChild(parentID, name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, metadata.NewNotFoundError(name, "entry")
	}
	if err != nil {
		return nil, ioError(err)
	}

	var childID uuid.UUID
	err = item.Value(func(val []byte) error {
		childID, err = decodeUUID(val)
		return err
	})
	if err != nil {
		return nil, ioError(err)
	}
	return getFileTxn(txn, keyFile(childID), name)
}
