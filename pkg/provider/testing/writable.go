package testing

import (
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunWritableTests covers writable streams and writers.
func (suite *ProviderTestSuite) RunWritableTests(t *testing.T) {
	t.Run("WriteSeekTruncate", suite.testWriteSeekTruncate)
	t.Run("SeekPastSize", suite.testSeekPastSize)
	t.Run("PositionedWrite", suite.testPositionedWrite)
	t.Run("KeepExistingData", suite.testKeepExistingData)
	t.Run("PendingUntilClose", suite.testPendingUntilClose)
	t.Run("Abort", suite.testAbort)
	t.Run("WriterLock", suite.testWriterLock)
	t.Run("WriterOperations", suite.testWriterOperations)
	t.Run("ClosedStream", suite.testClosedStream)
}

func (suite *ProviderTestSuite) testWriteSeekTruncate(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)

	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("hello")}))
	require.NoError(t, stream.Seek(ctx, 5))
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte(" world")}))
	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "hello world", mustRead(t, file))

	stream, err = file.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)
	require.NoError(t, stream.Truncate(ctx, 5))
	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "hello", mustRead(t, file))
}

func (suite *ProviderTestSuite) testSeekPastSize(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("abc")}))

	err = stream.Seek(ctx, 4)
	requireCode(t, err, provider.ErrOutOfRange)
	assert.Equal(t, provider.MsgSeekPastSize, err.Error())

	// The failed seek left the cursor at the end.
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("d")}))
	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "abcd", mustRead(t, file))
}

func (suite *ProviderTestSuite) testPositionedWrite(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("xxxxx")}))
	require.NoError(t, stream.Write(ctx, provider.WriteParams{
		Type:     provider.WriteTypeWrite,
		Data:     []byte("ab"),
		Position: int64Ptr(1),
	}))
	// The cursor follows the positioned write.
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("c")}))
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Type: provider.WriteTypeTruncate, Size: int64Ptr(7)}))
	require.NoError(t, stream.Close(ctx))

	assert.Equal(t, "xabcx\x00\x00", mustRead(t, file))
}

func (suite *ProviderTestSuite) testKeepExistingData(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	mustWrite(t, file, "hello world")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("J")}))
	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "Jello world", mustRead(t, file))

	stream, err = file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("J")}))
	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "J", mustRead(t, file))
}

func (suite *ProviderTestSuite) testPendingUntilClose(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	mustWrite(t, file, "old")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("new data")}))

	assert.Equal(t, "old", mustRead(t, file))

	require.NoError(t, stream.Close(ctx))
	assert.Equal(t, "new data", mustRead(t, file))
}

func (suite *ProviderTestSuite) testAbort(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	mustWrite(t, file, "keep me")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Write(ctx, provider.WriteParams{Data: []byte("discard me")}))

	reason, err := stream.Abort(ctx, "I've got my reasons")
	require.NoError(t, err)
	assert.Equal(t, "I've got my reasons", reason)
	assert.Equal(t, "keep me", mustRead(t, file))
}

func (suite *ProviderTestSuite) testWriterLock(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.False(t, stream.Locked())

	writer, err := stream.GetWriter(ctx)
	require.NoError(t, err)
	assert.True(t, stream.Locked())

	_, err = stream.GetWriter(ctx)
	requireCode(t, err, provider.ErrLockConflict)
	assert.Equal(t, provider.MsgWriterLocked, err.Error())
	assert.True(t, stream.Locked())

	err = stream.Write(ctx, provider.WriteParams{Data: []byte("x")})
	requireCode(t, err, provider.ErrLockConflict)

	require.NoError(t, writer.ReleaseLock(ctx))
	assert.False(t, stream.Locked())

	_, err = writer.DesiredSize(ctx)
	requireCode(t, err, provider.ErrInvalidState)

	second, err := stream.GetWriter(ctx)
	require.NoError(t, err)
	require.NoError(t, second.ReleaseLock(ctx))
}

func (suite *ProviderTestSuite) testWriterOperations(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	mustWrite(t, file, "0123456789")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{KeepExistingData: true})
	require.NoError(t, err)

	writer, err := stream.GetWriter(ctx)
	require.NoError(t, err)

	select {
	case <-writer.Ready():
	default:
		t.Fatal("writer must be ready")
	}
	select {
	case <-writer.Closed():
		t.Fatal("writer must not be closed yet")
	default:
	}

	size, err := writer.DesiredSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	require.NoError(t, writer.Write(ctx, provider.WriteParams{Data: []byte("ab")}))
	require.NoError(t, writer.Close(ctx))

	select {
	case <-writer.Closed():
	default:
		t.Fatal("writer must be closed after Close")
	}
	assert.Equal(t, "ab23456789", mustRead(t, file))
}

func (suite *ProviderTestSuite) testClosedStream(t *testing.T) {
	root := suite.NewRoot(t)
	file := mustFile(t, root, "a")
	ctx := testContext()

	stream, err := file.CreateWritable(ctx, provider.CreateWritableOptions{})
	require.NoError(t, err)
	require.NoError(t, stream.Close(ctx))

	requireCode(t, stream.Write(ctx, provider.WriteParams{Data: []byte("x")}), provider.ErrInvalidState)
	requireCode(t, stream.Close(ctx), provider.ErrInvalidState)
	_, err = stream.Abort(ctx, "late")
	requireCode(t, err, provider.ErrInvalidState)
}
