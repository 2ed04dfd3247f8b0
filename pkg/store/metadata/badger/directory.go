package badger

import (
	"bytes"
	"context"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ReadDirectory returns one page of the children of dirHandle.
//
// Children are scanned with a "c:<dirUUID>:" prefix iterator, so entries
// come back in byte order of their names. A non-empty token seeks to the
// token key and skips it.
func (s *BadgerMetadataStore) ReadDirectory(
	ctx context.Context,
	dirHandle metadata.FileHandle,
	token string,
	limit int,
) (*metadata.ReadDirPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = metadata.DefaultPageSize
	}

	page := &metadata.ReadDirPage{}
	err := s.db.View(func(txn *badger.Txn) error {
		dir, err := resolveDirTxn(txn, dirHandle)
		if err != nil {
			return err
		}

		prefix := keyChildPrefix(dir.ID)
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if token != "" {
			seek = keyChild(dir.ID, token)
		}

		for it.Seek(seek); it.Valid(); it.Next() {
			if len(page.Entries)%100 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			item := it.Item()
			key := item.Key()
			if token != "" && bytes.Equal(key, seek) {
				continue
			}

			if len(page.Entries) == limit {
				page.HasMore = true
				page.NextToken = page.Entries[len(page.Entries)-1].Name
				return nil
			}

			childName := string(key[len(prefix):])
			var childKey []byte
			err := item.Value(func(val []byte) error {
				childID, err := decodeUUID(val)
				if err != nil {
					return err
				}
				childKey = keyFile(childID)
				return nil
			})
			if err != nil {
				return ioError(err)
			}

			child, err := getFileTxn(txn, childKey, childName)
			if err != nil {
				return err
			}
			handle, err := metadata.EncodeFileHandle(child)
			if err != nil {
				return err
			}

			page.Entries = append(page.Entries, metadata.DirEntry{
				Name:   childName,
				Handle: handle,
				Type:   child.Type,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}
