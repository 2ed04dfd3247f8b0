package access

import (
	"context"
	"errors"
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Run("SampleRoot", func(t *testing.T) {
		root := openSample(t)
		assert.Equal(t, provider.KindDirectory, root.Kind())
		assert.Equal(t, "", root.Name())
	})

	t.Run("UnknownScheme", func(t *testing.T) {
		_, err := Open(context.Background(), "nope:///")
		require.Error(t, err)
		assert.Equal(t, provider.ErrNotSupported, ErrorCode(err))
	})

	t.Run("BadLocator", func(t *testing.T) {
		_, err := Open(context.Background(), "no-scheme")
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("WrapNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil))
		assert.Nil(t, WrapFile(nil))
	})
}

func TestGetDirectoryHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Existing", func(t *testing.T) {
		root := openSample(t)
		dir, err := root.GetDirectoryHandle(ctx, "first", nil)
		require.NoError(t, err)
		assert.Equal(t, "first", dir.Name())
		assert.Equal(t, provider.KindDirectory, dir.Kind())
	})

	t.Run("Missing", func(t *testing.T) {
		root := openSample(t)
		_, err := root.GetDirectoryHandle(ctx, "nothing", nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, `Directory "nothing" not found`, err.Error())
	})

	t.Run("FileIsTypeMismatch", func(t *testing.T) {
		root := openSample(t)
		_, err := root.GetDirectoryHandle(ctx, "annar", nil)
		require.Error(t, err)
		assert.True(t, IsTypeMismatch(err))
		assert.Contains(t, err.Error(), provider.MsgWrongEntryType)
	})

	t.Run("FileIsTypeMismatchWithCreate", func(t *testing.T) {
		root := openSample(t)
		_, err := root.GetDirectoryHandle(ctx, "annar", &GetDirectoryOptions{Create: true})
		assert.True(t, IsTypeMismatch(err))
	})

	t.Run("Create", func(t *testing.T) {
		root := openSample(t)
		dir, err := root.GetDirectoryHandle(ctx, "fresh", &GetDirectoryOptions{Create: true})
		require.NoError(t, err)

		again, err := root.GetDirectoryHandle(ctx, "fresh", nil)
		require.NoError(t, err)
		same, err := dir.IsSameEntry(ctx, again)
		require.NoError(t, err)
		assert.True(t, same)
	})

	t.Run("Deprecated", func(t *testing.T) {
		root := openSample(t)
		dir, err := root.GetDirectory(ctx, "quatre", nil)
		require.NoError(t, err)
		assert.True(t, dir.IsDirectory())
		assert.False(t, dir.IsFile())
	})
}

func TestGetFileHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing", func(t *testing.T) {
		root := openSample(t)
		_, err := root.GetFileHandle(ctx, "nothing", nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, `File "nothing" not found`, err.Error())
	})

	t.Run("DirectoryIsTypeMismatch", func(t *testing.T) {
		root := openSample(t)
		_, err := root.GetFileHandle(ctx, "first", nil)
		assert.True(t, IsTypeMismatch(err))
	})

	t.Run("CreateKeepsExisting", func(t *testing.T) {
		root := openSample(t)
		fh, err := root.GetFileHandle(ctx, "annar", &GetFileOptions{Create: true})
		require.NoError(t, err)

		file, err := fh.GetFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(123), file.Size())
	})

	t.Run("CreateEmpty", func(t *testing.T) {
		root := openSample(t)
		fh, err := root.GetFileHandle(ctx, "new.txt", &GetFileOptions{Create: true})
		require.NoError(t, err)
		assert.True(t, fh.IsFile())
		assert.Equal(t, "", mustText(t, root, "new.txt"))
	})

	t.Run("Deprecated", func(t *testing.T) {
		root := openSample(t)
		fh, err := root.GetFile(ctx, "annar", nil)
		require.NoError(t, err)
		assert.Equal(t, "annar", fh.Name())
	})
}

func TestRemoveEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("File", func(t *testing.T) {
		root := openSample(t)
		require.NoError(t, root.RemoveEntry(ctx, "annar", nil))

		_, err := root.GetFileHandle(ctx, "annar", nil)
		assert.True(t, IsNotFound(err))
	})

	t.Run("Missing", func(t *testing.T) {
		root := openSample(t)
		err := root.RemoveEntry(ctx, "ghost", nil)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, `Entry "ghost" not found`, err.Error())
	})

	t.Run("NotEmpty", func(t *testing.T) {
		root := openSample(t)
		err := root.RemoveEntry(ctx, "first", nil)
		require.Error(t, err)
		assert.True(t, IsNotEmpty(err))
		assert.Equal(t, `Directory "first" is not empty`, err.Error())

		_, err = root.GetDirectoryHandle(ctx, "first", nil)
		assert.NoError(t, err)
	})

	t.Run("Recursive", func(t *testing.T) {
		root := openSample(t)
		dir, err := root.GetDirectoryHandle(ctx, "first", nil)
		require.NoError(t, err)
		_, err = dir.GetDirectoryHandle(ctx, "deeper", &GetDirectoryOptions{Create: true})
		require.NoError(t, err)

		require.NoError(t, root.RemoveEntry(ctx, "first", &RemoveOptions{Recursive: true}))

		_, err = root.GetDirectoryHandle(ctx, "first", nil)
		assert.True(t, IsNotFound(err))
	})

	t.Run("ProviderFailureUnchanged", func(t *testing.T) {
		cause := provider.NewError(provider.ErrIO, "disk on fire")
		dir := Wrap(&fakeDir{err: cause})

		err := dir.RemoveEntry(ctx, "x", nil)
		assert.Same(t, cause, err)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	root := openSample(t)

	first, err := root.GetDirectoryHandle(ctx, "first", nil)
	require.NoError(t, err)
	comment, err := first.GetFileHandle(ctx, "comment", nil)
	require.NoError(t, err)
	annar, err := root.GetFileHandle(ctx, "annar", nil)
	require.NoError(t, err)

	t.Run("Descendant", func(t *testing.T) {
		path, err := root.Resolve(ctx, comment)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "comment"}, path)
	})

	t.Run("Self", func(t *testing.T) {
		path, err := first.Resolve(ctx, first)
		require.NoError(t, err)
		assert.NotNil(t, path)
		assert.Empty(t, path)
	})

	t.Run("NotDescendant", func(t *testing.T) {
		path, err := first.Resolve(ctx, annar)
		require.NoError(t, err)
		assert.Nil(t, path)
	})

	t.Run("ProviderHandle", func(t *testing.T) {
		path, err := root.Resolve(ctx, comment.Unwrap())
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "comment"}, path)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := root.Resolve(ctx, nil)
		assert.True(t, IsInvalidArgument(err))
	})
}

func TestEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("SampleRoot", func(t *testing.T) {
		root := openSample(t)

		kinds := map[string]provider.Kind{}
		it := root.Entries(ctx)
		defer it.Close()
		for it.Next() {
			name, handle := it.Entry()
			kinds[name] = handle.Kind()

			switch handle.Kind() {
			case provider.KindDirectory:
				assert.IsType(t, &DirectoryHandle{}, handle)
			case provider.KindFile:
				assert.IsType(t, &FileHandle{}, handle)
			}
		}
		require.NoError(t, it.Err())

		assert.Equal(t, map[string]provider.Kind{
			"first":  provider.KindDirectory,
			"quatre": provider.KindDirectory,
			"3":      provider.KindFile,
			"annar":  provider.KindFile,
		}, kinds)
	})

	t.Run("KeysAndValues", func(t *testing.T) {
		root := openSample(t)

		var keys []string
		keyIt := root.Keys(ctx)
		for keyIt.Next() {
			keys = append(keys, keyIt.Key())
		}
		require.NoError(t, keyIt.Err())
		require.NoError(t, keyIt.Close())

		var names []string
		valueIt := root.GetEntries(ctx)
		for valueIt.Next() {
			names = append(names, valueIt.Value().Name())
		}
		require.NoError(t, valueIt.Err())
		require.NoError(t, valueIt.Close())

		assert.ElementsMatch(t, []string{"first", "quatre", "3", "annar"}, keys)
		assert.ElementsMatch(t, keys, names)
	})

	t.Run("FreshSequences", func(t *testing.T) {
		root := openSample(t)

		count := func() int {
			n := 0
			for _, err := range root.All(ctx) {
				require.NoError(t, err)
				n++
			}
			return n
		}
		assert.Equal(t, 4, count())
		assert.Equal(t, 4, count())
	})

	t.Run("Lazy", func(t *testing.T) {
		fake := &fakeDir{names: []string{"a", "b", "c"}}
		dir := Wrap(fake)

		it := dir.Entries(ctx)
		assert.Equal(t, 0, fake.opened)

		require.True(t, it.Next())
		assert.Equal(t, 1, fake.opened)
		assert.Equal(t, 1, fake.pulled)

		require.NoError(t, it.Close())
		assert.False(t, it.Next())
		assert.Equal(t, 1, fake.pulled)
	})

	t.Run("AllStopsEarly", func(t *testing.T) {
		fake := &fakeDir{names: []string{"a", "b", "c"}}
		dir := Wrap(fake)

		for entry, err := range dir.All(ctx) {
			require.NoError(t, err)
			assert.Equal(t, "a", entry.Name)
			break
		}
		assert.Equal(t, 1, fake.pulled)
	})

	t.Run("FailureEndsSequence", func(t *testing.T) {
		cause := errors.New("listing failed")
		dir := Wrap(&fakeDir{names: []string{"a"}, err: cause})

		var names []string
		var failures []error
		for entry, err := range dir.All(ctx) {
			if err != nil {
				failures = append(failures, err)
				continue
			}
			names = append(names, entry.Name)
		}
		assert.Equal(t, []string{"a"}, names)
		require.Len(t, failures, 1)
		assert.ErrorIs(t, failures[0], cause)
	})

	t.Run("ReleaseFailure", func(t *testing.T) {
		cause := errors.New("release failed")
		dir := Wrap(&fakeDir{names: []string{"a"}, closeErr: cause})
		it := dir.Keys(ctx)
		defer it.Close()

		require.True(t, it.Next())
		assert.Equal(t, "a", it.Key())
		assert.False(t, it.Next())
		assert.ErrorIs(t, it.Err(), cause)
	})

	t.Run("ListingFailureWinsOverRelease", func(t *testing.T) {
		cause := errors.New("listing failed")
		dir := Wrap(&fakeDir{err: cause, closeErr: errors.New("release failed")})
		it := dir.Entries(ctx)
		defer it.Close()

		assert.False(t, it.Next())
		assert.ErrorIs(t, it.Err(), cause)
	})

	t.Run("ValuesAreWrapped", func(t *testing.T) {
		dir := Wrap(&fakeDir{names: []string{"a"}})
		it := dir.Values(ctx)
		defer it.Close()

		require.True(t, it.Next())
		assert.IsType(t, &DirectoryHandle{}, it.Value())
	})

	t.Run("UnusableHandle", func(t *testing.T) {
		child := bareHandle{ref{kind: provider.KindFile, name: "a"}}
		dir := Wrap(&fakeDir{names: []string{"a"}, child: child})
		it := dir.Entries(ctx)
		defer it.Close()

		assert.False(t, it.Next())
		assert.True(t, IsInvalidState(it.Err()))
	})
}

func TestWrongTypeFromPlainError(t *testing.T) {
	dir := Wrap(&fakeDir{})

	_, err := dir.GetDirectoryHandle(context.Background(), "x", nil)
	require.Error(t, err)
	assert.True(t, IsTypeMismatch(err))
	assert.Equal(t, provider.MsgWrongEntryType, err.Error())
}
