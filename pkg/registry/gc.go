package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/gc"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// StartCollectors creates an orphaned content collector for every content
// store that serves at least one root and supports garbage collection, and
// starts it when config.Enabled is set. Stores without roots are left alone:
// nothing registered references their content.
//
// Every collector treats the content referenced by any registered metadata
// store as live, since roots on different metadata stores may share one
// content store.
func (r *Registry) StartCollectors(config gc.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is closed")
	}

	for _, name := range sortedKeys(r.content) {
		if _, exists := r.collectors[name]; exists {
			continue
		}
		if !r.servesRootLocked(name) {
			continue
		}

		store := r.content[name]
		if _, ok := store.(content.GarbageCollectableStore); !ok {
			logger.Debug("registry: content store %q does not support garbage collection", name)
			continue
		}

		collector, err := gc.NewCollector(store, r, r.trackers[name], config)
		if err != nil {
			return fmt.Errorf("content store %q: %w", name, err)
		}
		collector.Start()
		r.collectors[name] = collector
	}
	return nil
}

// CollectGarbage runs one collection on the named content store now.
// StartCollectors must have created its collector.
func (r *Registry) CollectGarbage(ctx context.Context, contentStore string) (*gc.Stats, error) {
	r.mu.RLock()
	collector, exists := r.collectors[contentStore]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no garbage collector for content store %q", contentStore)
	}
	return collector.RunNow(ctx)
}

// GetAllContentIDs returns the sorted union of the content IDs referenced by
// every registered metadata store.
func (r *Registry) GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error) {
	r.mu.RLock()
	names := sortedKeys(r.metadata)
	stores := make([]metadata.MetadataStore, len(names))
	for i, name := range names {
		stores[i] = r.metadata[name]
	}
	r.mu.RUnlock()

	var ids []metadata.ContentID
	for i, store := range stores {
		referenced, err := store.GetAllContentIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("metadata store %q: %w", names[i], err)
		}
		ids = append(ids, referenced...)
	}

	slices.Sort(ids)
	return slices.Compact(ids), nil
}

func (r *Registry) servesRootLocked(contentStore string) bool {
	for _, root := range r.roots {
		if root.ContentStore == contentStore {
			return true
		}
	}
	return false
}
