package access

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/marmos91/fsaccess/pkg/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateError(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, translateError(nil))
	})

	t.Run("WrongEntryTypeBecomesTypeMismatch", func(t *testing.T) {
		cause := provider.NewError(provider.ErrUnknown, provider.MsgWrongEntryType)
		err := translateError(cause)

		assert.True(t, IsTypeMismatch(err))
		assert.Equal(t, provider.MsgWrongEntryType, err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WrappedMessage", func(t *testing.T) {
		cause := fmt.Errorf("lookup annar: %s", provider.MsgWrongEntryType)
		err := translateError(cause)

		assert.True(t, IsTypeMismatch(err))
		assert.Equal(t, cause.Error(), err.Error())
	})

	t.Run("AlreadyTypeMismatch", func(t *testing.T) {
		cause := provider.NewError(provider.ErrTypeMismatch, provider.MsgWrongEntryType)
		assert.Same(t, cause, translateError(cause))
	})

	t.Run("OthersUnchanged", func(t *testing.T) {
		others := []error{
			provider.NewError(provider.ErrNotFound, `File "x" not found`),
			provider.NewError(provider.ErrLockConflict, provider.MsgWriterLocked),
			errors.New("something else"),
			context.Canceled,
		}
		for _, cause := range others {
			assert.Equal(t, cause, translateError(cause))
		}
	})
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, provider.ErrUnknown, ErrorCode(nil))
	assert.Equal(t, provider.ErrUnknown, ErrorCode(errors.New("plain")))

	wrapped := fmt.Errorf("outer: %w", provider.NewError(provider.ErrNotEmpty, "full"))
	assert.Equal(t, provider.ErrNotEmpty, ErrorCode(wrapped))
	assert.True(t, IsNotEmpty(wrapped))
}

func TestCanceledContextPassesThrough(t *testing.T) {
	root := openSample(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := root.GetFileHandle(ctx, "annar", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
