package access

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/marmos91/fsaccess/pkg/provider"
)

// DirEntry is one item of a directory enumeration.
type DirEntry struct {
	Name   string
	Handle EntryHandle
}

// EntryIterator is a single-pass lazy enumeration of a directory.
//
// The provider enumeration starts on the first call to Next and each item is
// fetched only when Next asks for it. Nested directories come back wrapped
// as *DirectoryHandle and files as *FileHandle. Order is the provider's.
//
//	it := dir.Entries(ctx)
//	defer it.Close()
//	for it.Next() {
//	    name, handle := it.Entry()
//	    ...
//	}
//	if err := it.Err(); err != nil {
//	    return err
//	}
type EntryIterator struct {
	ctx context.Context
	dir provider.DirectoryHandle
	raw provider.DirectoryIterator

	current DirEntry
	err     error
	done    bool
}

// Next advances to the next entry. It returns false when the directory is
// exhausted or a failure occurred; Err tells the two apart.
func (it *EntryIterator) Next() bool {
	if it.done {
		return false
	}

	if it.raw == nil {
		raw, err := it.dir.Entries(it.ctx)
		if err != nil {
			return it.fail(err)
		}
		it.raw = raw
	}

	entry, err := it.raw.Next(it.ctx)
	if errors.Is(err, io.EOF) {
		it.finish()
		return false
	}
	if err != nil {
		return it.fail(err)
	}

	handle, err := wrapEntry(entry.Handle)
	if err != nil {
		return it.fail(err)
	}

	it.current = DirEntry{Name: entry.Name, Handle: handle}
	return true
}

// Entry returns the current name and handle.
func (it *EntryIterator) Entry() (string, EntryHandle) {
	return it.current.Name, it.current.Handle
}

// Err returns the failure that stopped the iteration, if any. When the
// directory was exhausted cleanly it reports a failure to release the
// provider enumeration.
func (it *EntryIterator) Err() error {
	return it.err
}

// Close stops the iteration and releases the provider enumeration.
func (it *EntryIterator) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	if it.raw != nil {
		return translateError(it.raw.Close())
	}
	return nil
}

func (it *EntryIterator) fail(err error) bool {
	it.err = translateError(err)
	it.finish()
	return false
}

func (it *EntryIterator) finish() {
	if it.done {
		return
	}
	it.done = true
	it.current = DirEntry{}
	if it.raw != nil {
		if err := it.raw.Close(); err != nil && it.err == nil {
			it.err = translateError(err)
		}
	}
}

// KeyIterator yields child names only.
type KeyIterator struct {
	entries *EntryIterator
}

// Next advances to the next name.
func (it *KeyIterator) Next() bool { return it.entries.Next() }

// Key returns the current name.
func (it *KeyIterator) Key() string { return it.entries.current.Name }

// Err returns the failure that stopped the iteration, if any.
func (it *KeyIterator) Err() error { return it.entries.Err() }

// Close stops the iteration.
func (it *KeyIterator) Close() error { return it.entries.Close() }

// ValueIterator yields child handles only.
type ValueIterator struct {
	entries *EntryIterator
}

// Next advances to the next handle.
func (it *ValueIterator) Next() bool { return it.entries.Next() }

// Value returns the current handle.
func (it *ValueIterator) Value() EntryHandle { return it.entries.current.Handle }

// Err returns the failure that stopped the iteration, if any.
func (it *ValueIterator) Err() error { return it.entries.Err() }

// Close stops the iteration.
func (it *ValueIterator) Close() error { return it.entries.Close() }

// All is the default iteration of a directory and yields the same items as
// Entries. A failure is yielded once as the error and ends the sequence.
//
//	for entry, err := range dir.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (d *DirectoryHandle) All(ctx context.Context) iter.Seq2[DirEntry, error] {
	return func(yield func(DirEntry, error) bool) {
		it := d.Entries(ctx)
		defer it.Close()

		for it.Next() {
			if !yield(it.current, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(DirEntry{}, err)
		}
	}
}
