package badger

import (
	"context"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// Remove deletes the child named name of parentHandle.
//
// A directory must be empty; the check and the delete run in the same
// transaction under writeMu.
func (s *BadgerMetadataStore) Remove(
	ctx context.Context,
	parentHandle metadata.FileHandle,
	name string,
) (*metadata.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := metadata.ValidateName(name); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var child *metadata.File
	err := s.db.Update(func(txn *badger.Txn) error {
		parent, err := resolveDirTxn(txn, parentHandle)
		if err != nil {
			return err
		}
		child, err = childTxn(txn, parent.ID, name)
		if err != nil {
			return err
		}

		if child.Type == metadata.FileTypeDirectory && hasChildrenTxn(txn, child.ID) {
			return metadata.NewStoreError(metadata.ErrNotEmpty, "directory not empty", name)
		}

		if err := txn.Delete(keyChild(parent.ID, name)); err != nil {
			return ioError(err)
		}
		if err := txn.Delete(keyFile(child.ID)); err != nil {
			return ioError(err)
		}

		parent.Mtime = time.Now()
		parent.Ctime = parent.Mtime
		return putFileTxn(txn, parent)
	})
	if err != nil {
		return nil, err
	}
	return child, nil
}

// hasChildrenTxn reports whether directory id has at least one child.
func hasChildrenTxn(txn *badger.Txn, id uuid.UUID) bool {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = keyChildPrefix(id)

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return it.Valid()
}
