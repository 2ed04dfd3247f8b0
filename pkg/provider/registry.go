package provider

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
)

// Opener opens the root directory named by a locator URL.
type Opener func(ctx context.Context, locator *url.URL) (DirectoryHandle, error)

const (
	// DefaultReadSize is the rsize used when a locator does not set one.
	DefaultReadSize = 1 << 20

	// MinReadSize and MaxReadSize bound the rsize locator parameter.
	MinReadSize = 8 << 10
	MaxReadSize = 4 << 20
)

var (
	openersMu sync.RWMutex
	openers   = make(map[string]Opener)
)

// Register makes an Opener available for locators with the given scheme.
//
// It panics if opener is nil or the scheme is already registered, following
// database/sql.Register.
func Register(scheme string, opener Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()

	if opener == nil {
		panic("provider: Register opener is nil")
	}
	if _, dup := openers[scheme]; dup {
		panic("provider: Register called twice for scheme " + scheme)
	}
	openers[scheme] = opener
}

// Schemes returns the sorted list of registered locator schemes.
func Schemes() []string {
	openersMu.RLock()
	defer openersMu.RUnlock()

	schemes := make([]string, 0, len(openers))
	for scheme := range openers {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

// Open parses locator and dispatches to the Opener registered for its scheme.
//
// Returns an ErrInvalidArgument *Error for an unparsable locator and
// ErrNotSupported for an unknown scheme.
func Open(ctx context.Context, locator string) (DirectoryHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u, err := url.Parse(locator)
	if err != nil {
		return nil, &Error{Code: ErrInvalidArgument, Message: fmt.Sprintf("invalid locator %q", locator), Err: err}
	}
	if u.Scheme == "" {
		return nil, Errorf(ErrInvalidArgument, "locator %q has no scheme", locator)
	}

	openersMu.RLock()
	opener, ok := openers[u.Scheme]
	openersMu.RUnlock()
	if !ok {
		return nil, Errorf(ErrNotSupported, "no provider registered for scheme %q", u.Scheme)
	}

	return opener(ctx, u)
}

// ReadSize returns the rsize query parameter of a locator.
//
// Missing or unparsable values yield DefaultReadSize; others are clamped to
// [MinReadSize, MaxReadSize].
func ReadSize(u *url.URL) int {
	if u == nil {
		return DefaultReadSize
	}
	raw := u.Query().Get("rsize")
	if raw == "" {
		return DefaultReadSize
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultReadSize
	}
	return ClampReadSize(n)
}

// ClampReadSize bounds n to [MinReadSize, MaxReadSize].
func ClampReadSize(n int) int {
	switch {
	case n < MinReadSize:
		return MinReadSize
	case n > MaxReadSize:
		return MaxReadSize
	}
	return n
}
