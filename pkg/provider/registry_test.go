package provider

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndOpen(t *testing.T) {
	var got *url.URL
	Register("registry-test", func(ctx context.Context, u *url.URL) (DirectoryHandle, error) {
		got = u
		return nil, nil
	})

	_, err := Open(context.Background(), "registry-test://host/share?rsize=65536")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "host", got.Host)
	assert.Equal(t, "/share", got.Path)
	assert.Contains(t, Schemes(), "registry-test")

	assert.Panics(t, func() {
		Register("registry-test", func(context.Context, *url.URL) (DirectoryHandle, error) { return nil, nil })
	})
	assert.Panics(t, func() { Register("registry-nil", nil) })
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		name    string
		locator string
		code    ErrorCode
	}{
		{"NoScheme", "just/a/path", ErrInvalidArgument},
		{"Unparsable", "::bad", ErrInvalidArgument},
		{"UnknownScheme", "nope://x", ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.locator)
			require.Error(t, err)
			assert.True(t, HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestOpenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, "mem://x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadSize(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", DefaultReadSize},
		{"rsize=abc", DefaultReadSize},
		{"rsize=65536", 65536},
		{"rsize=1", MinReadSize},
		{"rsize=999999999", MaxReadSize},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			u, err := url.Parse("mem://root?" + tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ReadSize(u))
		})
	}

	assert.Equal(t, DefaultReadSize, ReadSize(nil))
}
