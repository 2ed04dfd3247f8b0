package gc

import (
	"slices"
	"sync"

	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// Tracker records content that has been written to a content store but is
// not referenced by metadata yet, such as the staging object of an open
// writable stream. The collector never deletes tracked content.
//
// A nil *Tracker is valid: Track and Release do nothing and Pending is
// empty.
type Tracker struct {
	mu      sync.Mutex
	pending map[metadata.ContentID]int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[metadata.ContentID]int)}
}

// Track marks id as in use. Calls nest; each needs a matching Release.
func (t *Tracker) Track(id metadata.ContentID) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[id]++
}

// Release undoes one Track of id.
func (t *Tracker) Release(id metadata.ContentID) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending[id] <= 1 {
		delete(t.pending, id)
		return
	}
	t.pending[id]--
}

// Pending returns the tracked ids in sorted order.
func (t *Tracker) Pending() []metadata.ContentID {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]metadata.ContentID, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
