package testing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFileTests executes all file operation tests in the suite.
func (suite *StoreTestSuite) RunFileTests(t *testing.T) {
	t.Run("Lookup", suite.testLookup)
	t.Run("GetFile", suite.testGetFile)
	t.Run("Create", suite.testCreate)
	t.Run("SetFileAttributes", suite.testSetFileAttributes)
}

// ============================================================================
// Lookup Tests
// ============================================================================

func (suite *StoreTestSuite) testLookup(test *testing.T) {
	test.Run("LookupRegularFile", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		fileHandle := createTestFile(t, store, rootHandle, "test.txt")

		found, err := store.Lookup(context.Background(), rootHandle, "test.txt")
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeRegular, found.Type)

		handle, err := metadata.EncodeFileHandle(found)
		require.NoError(t, err)
		assert.Equal(t, fileHandle, handle)
	})

	test.Run("LookupDirectory", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		createTestDirectory(t, store, rootHandle, "subdir")

		found, err := store.Lookup(context.Background(), rootHandle, "subdir")
		require.NoError(t, err)
		assert.Equal(t, metadata.FileTypeDirectory, found.Type)
	})

	test.Run("LookupNotFound", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		_, err := store.Lookup(context.Background(), rootHandle, "missing")
		requireCode(t, err, metadata.ErrNotFound)
	})

	test.Run("LookupInFile", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "file")

		_, err := store.Lookup(context.Background(), fileHandle, "child")
		requireCode(t, err, metadata.ErrNotDirectory)
	})

	test.Run("LookupInvalidNames", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		for _, name := range []string{"", ".", "..", "a/b"} {
			_, err := store.Lookup(context.Background(), rootHandle, name)
			requireCode(t, err, metadata.ErrInvalidArgument)
		}
	})

	test.Run("LookupIsNested", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		dirHandle := createTestDirectory(t, store, rootHandle, "dir")
		createTestFile(t, store, dirHandle, "inner")

		_, err := store.Lookup(context.Background(), rootHandle, "inner")
		requireCode(t, err, metadata.ErrNotFound)

		_, err = store.Lookup(context.Background(), dirHandle, "inner")
		assert.NoError(t, err)
	})
}

// ============================================================================
// GetFile Tests
// ============================================================================

func (suite *StoreTestSuite) testGetFile(test *testing.T) {
	test.Run("GetExisting", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		root, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		file := mustGetFile(t, store, fileHandle)
		assert.Equal(t, "a.txt", file.Name)
		assert.Equal(t, root.ID, file.ParentID)
		assert.Equal(t, "/test", file.ShareName)
	})

	test.Run("GetMalformedHandle", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()

		_, err := store.GetFile(context.Background(), metadata.FileHandle("garbage"))
		requireCode(t, err, metadata.ErrInvalidHandle)
	})

	test.Run("GetUnknownHandle", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		createTestShare(t, store, "/test")

		handle, err := metadata.EncodeShareHandle("/test", uuid.New())
		require.NoError(t, err)

		_, err = store.GetFile(context.Background(), handle)
		requireCode(t, err, metadata.ErrNotFound)
	})

	test.Run("GetWrongShare", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/a")
		createTestShare(t, store, "/b")
		file, err := store.Create(context.Background(), rootHandle, "x", DefaultFileAttr())
		require.NoError(t, err)

		forged, err := metadata.EncodeShareHandle("/b", file.ID)
		require.NoError(t, err)

		_, err = store.GetFile(context.Background(), forged)
		requireCode(t, err, metadata.ErrNotFound)
	})

	test.Run("ReturnsCopy", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		file := mustGetFile(t, store, fileHandle)
		file.Name = "mutated"
		file.Size = 99

		again := mustGetFile(t, store, fileHandle)
		assert.Equal(t, "a.txt", again.Name)
		assert.Equal(t, uint64(0), again.Size)
	})
}

// ============================================================================
// Create Tests
// ============================================================================

func (suite *StoreTestSuite) testCreate(test *testing.T) {
	test.Run("CreateFile", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		attr := DefaultFileAttr()
		attr.Size = 10
		attr.ContentID = "content-1"

		file, err := store.Create(context.Background(), rootHandle, "a.txt", attr)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, file.ID)
		assert.Equal(t, uint64(10), file.Size)
		assert.Equal(t, metadata.ContentID("content-1"), file.ContentID)
		assert.Equal(t, uint32(0o644), file.Mode)
		assert.False(t, file.Mtime.IsZero())
		assert.False(t, file.Ctime.IsZero())
	})

	test.Run("CreateKeepsMtime", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		attr := DefaultFileAttr()
		attr.Mtime = mtime

		file, err := store.Create(context.Background(), rootHandle, "a.txt", attr)
		require.NoError(t, err)
		assert.True(t, mtime.Equal(file.Mtime))

		stored := mustGetFile(t, store, mustHandle(t, file))
		assert.True(t, mtime.Equal(stored.Mtime))
	})

	test.Run("CreateDirectoryDropsContent", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		attr := DefaultDirAttr()
		attr.Size = 4096
		attr.ContentID = "nope"

		dir, err := store.Create(context.Background(), rootHandle, "d", attr)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), dir.Size)
		assert.Empty(t, dir.ContentID)
	})

	test.Run("CreateDuplicate", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		createTestFile(t, store, rootHandle, "a.txt")

		_, err := store.Create(context.Background(), rootHandle, "a.txt", DefaultDirAttr())
		requireCode(t, err, metadata.ErrAlreadyExists)
	})

	test.Run("CreateInFile", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		_, err := store.Create(context.Background(), fileHandle, "b", DefaultFileAttr())
		requireCode(t, err, metadata.ErrNotDirectory)
	})

	test.Run("CreateInvalidName", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		_, err := store.Create(context.Background(), rootHandle, "a/b", DefaultFileAttr())
		requireCode(t, err, metadata.ErrInvalidArgument)
	})

	test.Run("CreateCancelled", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")

		_, err := store.Create(cancelledContext(), rootHandle, "a", DefaultFileAttr())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ============================================================================
// SetFileAttributes Tests
// ============================================================================

func (suite *StoreTestSuite) testSetFileAttributes(test *testing.T) {
	test.Run("SetSizeAndContent", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		updated, err := store.SetFileAttributes(context.Background(), fileHandle, &metadata.SetAttrs{
			Size:      metadata.Uint64Ptr(123),
			ContentID: metadata.ContentIDPtr("c-123"),
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(123), updated.Size)

		stored := mustGetFile(t, store, fileHandle)
		assert.Equal(t, uint64(123), stored.Size)
		assert.Equal(t, metadata.ContentID("c-123"), stored.ContentID)
	})

	test.Run("SetMode", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		_, err := store.SetFileAttributes(context.Background(), fileHandle, &metadata.SetAttrs{
			Mode: metadata.Uint32Ptr(0o4444),
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(0o444), mustGetFile(t, store, fileHandle).Mode)
	})

	test.Run("SetMtime", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		fileHandle := createTestFile(t, store, rootHandle, "a.txt")

		mtime := time.Date(2001, 9, 9, 1, 46, 40, 0, time.UTC)
		_, err := store.SetFileAttributes(context.Background(), fileHandle, &metadata.SetAttrs{Mtime: &mtime})
		require.NoError(t, err)
		assert.True(t, mtime.Equal(mustGetFile(t, store, fileHandle).Mtime))
	})

	test.Run("SetSizeOnDirectory", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		_, rootHandle := createTestShare(t, store, "/test")
		dirHandle := createTestDirectory(t, store, rootHandle, "d")

		_, err := store.SetFileAttributes(context.Background(), dirHandle, &metadata.SetAttrs{
			Size: metadata.Uint64Ptr(1),
		})
		requireCode(t, err, metadata.ErrIsDirectory)
	})

	test.Run("SetOnMissing", func(t *testing.T) {
		store := suite.NewStore()
		defer store.Close()
		createTestShare(t, store, "/test")

		handle, err := metadata.EncodeShareHandle("/test", uuid.New())
		require.NoError(t, err)

		_, err = store.SetFileAttributes(context.Background(), handle, &metadata.SetAttrs{})
		requireCode(t, err, metadata.ErrNotFound)
	})
}

func mustHandle(t *testing.T, file *metadata.File) metadata.FileHandle {
	t.Helper()

	handle, err := metadata.EncodeFileHandle(file)
	require.NoError(t, err)
	return handle
}
