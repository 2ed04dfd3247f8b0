// Package badger implements a persistent metadata store on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// BadgerMetadataStoreConfig configures a BadgerMetadataStore.
type BadgerMetadataStoreConfig struct {
	// DBPath is the directory holding the BadgerDB files.
	// Required unless InMemory is set.
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the database in RAM (tests and throwaway shares)
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB sizes Badger's block cache (default 64)
	BlockCacheSizeMB int64 `mapstructure:"block_cache_mb"`

	// IndexCacheSizeMB sizes Badger's index cache (default 32)
	IndexCacheSizeMB int64 `mapstructure:"index_cache_mb"`
}

// BadgerMetadataStore implements metadata.MetadataStore on BadgerDB.
//
// Entries survive restarts, so file handles stay valid across process
// lifetimes. See keys.go for the key schema and serialization.go for the
// record encoding.
//
// Thread Safety:
// Reads run in concurrent Badger read transactions. Mutations are
// serialized by writeMu so that check-then-write sequences (name taken,
// directory empty) cannot race.
type BadgerMetadataStore struct {
	db      *badger.DB
	writeMu sync.Mutex
}

// NewBadgerMetadataStore opens (or creates) a Badger database.
//
// Parameters:
//   - ctx: Context checked before opening the database
//   - config: Store configuration
//
// Returns:
//   - *BadgerMetadataStore: Opened store (must be closed by caller)
//   - error: Configuration or database open error
func NewBadgerMetadataStore(ctx context.Context, config BadgerMetadataStoreConfig) (*BadgerMetadataStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if config.DBPath == "" && !config.InMemory {
		return nil, fmt.Errorf("badger metadata store: db_path is required")
	}

	var opts badger.Options
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(config.DBPath)
	}

	// Entry records are tiny; compression is not worth it.
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %q: %w", config.DBPath, err)
	}

	return &BadgerMetadataStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BadgerMetadataStore) Close() error {
	return s.db.Close()
}

// Healthcheck verifies the database accepts read transactions.
func (s *BadgerMetadataStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return metadata.NewStoreError(metadata.ErrIOError, "database is closed", "")
	}
	return s.db.View(func(txn *badger.Txn) error {
		return nil
	})
}

// getFileTxn loads an entry by ID inside txn.
func getFileTxn(txn *badger.Txn, key []byte, path string) (*metadata.File, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, metadata.NewNotFoundError(path, "entry")
	}
	if err != nil {
		return nil, ioError(err)
	}

	var file *metadata.File
	err = item.Value(func(val []byte) error {
		file, err = decodeFile(val)
		return err
	})
	if err != nil {
		return nil, ioError(err)
	}
	return file, nil
}

// resolveTxn decodes handle and loads the entry it references.
func resolveTxn(txn *badger.Txn, handle metadata.FileHandle) (*metadata.File, error) {
	shareName, id, err := metadata.DecodeFileHandle(handle)
	if err != nil {
		return nil, err
	}

	file, err := getFileTxn(txn, keyFile(id), handle.String())
	if err != nil {
		return nil, err
	}
	if file.ShareName != shareName {
		return nil, metadata.NewNotFoundError(handle.String(), "entry")
	}
	return file, nil
}

// resolveDirTxn is resolveTxn plus an ErrNotDirectory check.
func resolveDirTxn(txn *badger.Txn, handle metadata.FileHandle) (*metadata.File, error) {
	dir, err := resolveTxn(txn, handle)
	if err != nil {
		return nil, err
	}
	if dir.Type != metadata.FileTypeDirectory {
		return nil, metadata.NewStoreError(metadata.ErrNotDirectory, "not a directory", dir.Name)
	}
	return dir, nil
}

// putFileTxn writes the record of f.
func putFileTxn(txn *badger.Txn, f *metadata.File) error {
	data, err := encodeFile(f)
	if err != nil {
		return ioError(err)
	}
	if err := txn.Set(keyFile(f.ID), data); err != nil {
		return ioError(err)
	}
	return nil
}

// ioError wraps infrastructure failures as ErrIOError, leaving StoreErrors intact.
func ioError(err error) error {
	var storeErr *metadata.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &metadata.StoreError{Code: metadata.ErrIOError, Message: err.Error()}
}
