package badger

import (
	"context"
	"slices"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ctxCheckInterval is how many records are scanned between context checks.
const ctxCheckInterval = 1000

// GetAllContentIDs scans every entry record and returns the sorted
// ContentIDs of regular files.
//
// A record that fails to decode fails the whole scan. Skipping it would let
// the collector treat its content as orphaned.
func (s *BadgerMetadataStore) GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := make(map[metadata.ContentID]struct{})

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixFile)

		it := txn.NewIterator(opts)
		defer it.Close()

		scanned := 0
		for it.Rewind(); it.Valid(); it.Next() {
			scanned++
			if scanned%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			err := it.Item().Value(func(val []byte) error {
				file, err := decodeFile(val)
				if err != nil {
					return err
				}
				if file.Type == metadata.FileTypeRegular && file.ContentID != "" {
					seen[file.ContentID] = struct{}{}
				}
				return nil
			})
			if err != nil {
				logger.Warn("badger: decode entry %s: %v", it.Item().Key(), err)
				return ioError(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]metadata.ContentID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
