// Package registry keeps named stores and the roots served from them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/access"
	"github.com/marmos91/fsaccess/pkg/gc"
	"github.com/marmos91/fsaccess/pkg/provider/backend"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// Registry manages all named resources: metadata stores, content stores, and
// roots. It provides thread-safe registration and lookup.
//
// Example usage:
//
//	reg := NewRegistry()
//	reg.RegisterMetadataStore("badger-main", badgerStore)
//	reg.RegisterContentStore("local-disk", fsStore)
//	reg.AddRoot(ctx, &RootConfig{Name: "/data", MetadataStore: "badger-main", ContentStore: "local-disk"})
//
//	root, _ := reg.OpenRoot(ctx, "/data")
type Registry struct {
	mu         sync.RWMutex
	metadata   map[string]metadata.MetadataStore
	content    map[string]content.ContentStore
	trackers   map[string]*gc.Tracker // by content store name
	collectors map[string]*gc.Collector
	roots      map[string]*Root
	closed     bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		metadata:   make(map[string]metadata.MetadataStore),
		content:    make(map[string]content.ContentStore),
		trackers:   make(map[string]*gc.Tracker),
		collectors: make(map[string]*gc.Collector),
		roots:      make(map[string]*Root),
	}
}

// RegisterMetadataStore adds a named metadata store to the registry.
// Returns an error if a store with the same name already exists.
func (r *Registry) RegisterMetadataStore(name string, store metadata.MetadataStore) error {
	if store == nil {
		return fmt.Errorf("cannot register nil metadata store")
	}
	if name == "" {
		return fmt.Errorf("cannot register metadata store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.metadata[name]; exists {
		return fmt.Errorf("metadata store %q already registered", name)
	}

	r.metadata[name] = store
	return nil
}

// RegisterContentStore adds a named content store to the registry.
// Returns an error if a store with the same name already exists.
func (r *Registry) RegisterContentStore(name string, store content.ContentStore) error {
	if store == nil {
		return fmt.Errorf("cannot register nil content store")
	}
	if name == "" {
		return fmt.Errorf("cannot register content store with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.content[name]; exists {
		return fmt.Errorf("content store %q already registered", name)
	}

	r.content[name] = store
	r.trackers[name] = gc.NewTracker()
	return nil
}

// AddRoot creates and registers a new root.
//
// This method:
//  1. Validates that the root doesn't already exist
//  2. Validates that the referenced stores exist
//  3. Opens a backend provider, which creates the share root if needed
//  4. Installs the seed tree, if any
//
// Returns an error if:
//   - A root with the same name already exists
//   - The referenced metadata or content stores don't exist
//   - The provider cannot be opened or seeded
func (r *Registry) AddRoot(ctx context.Context, config *RootConfig) error {
	if config == nil || config.Name == "" {
		return fmt.Errorf("cannot add root with empty name")
	}
	if config.Seed != "" && config.Seed != "sample" {
		return fmt.Errorf("root %q: unknown seed %q", config.Name, config.Seed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("registry is closed")
	}
	if _, exists := r.roots[config.Name]; exists {
		return fmt.Errorf("root %q already exists", config.Name)
	}

	metadataStore, exists := r.metadata[config.MetadataStore]
	if !exists {
		return fmt.Errorf("metadata store %q not found", config.MetadataStore)
	}
	contentStore, exists := r.content[config.ContentStore]
	if !exists {
		return fmt.Errorf("content store %q not found", config.ContentStore)
	}

	p, err := backend.New(ctx, metadataStore, contentStore, backend.Config{
		ShareName: config.Name,
		PageSize:  config.PageSize,
		ReadSize:  config.ReadSize,
		ReadOnly:  config.ReadOnly,
		Limiter:   config.Limiter,
		Metrics:   config.Metrics,
		Tracker:   r.trackers[config.ContentStore],
	})
	if err != nil {
		return fmt.Errorf("failed to open root %q: %w", config.Name, err)
	}

	if config.Seed == "sample" {
		if err := backend.SeedSample(ctx, p); err != nil {
			return fmt.Errorf("failed to seed root %q: %w", config.Name, err)
		}
	}

	r.roots[config.Name] = &Root{
		Name:          config.Name,
		MetadataStore: config.MetadataStore,
		ContentStore:  config.ContentStore,
		ReadOnly:      config.ReadOnly,
		provider:      p,
	}

	logger.Debug("registry: added root %q (metadata=%s content=%s read_only=%v)",
		config.Name, config.MetadataStore, config.ContentStore, config.ReadOnly)
	return nil
}

// RemoveRoot removes a root from the registry.
// Returns an error if the root doesn't exist.
// Note: This does NOT close the underlying stores, as they may be used by other roots.
func (r *Registry) RemoveRoot(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.roots[name]; !exists {
		return fmt.Errorf("root %q not found", name)
	}

	delete(r.roots, name)
	return nil
}

// GetRoot retrieves a root by name.
func (r *Registry) GetRoot(name string) (*Root, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	root, exists := r.roots[name]
	if !exists {
		return nil, fmt.Errorf("root %q not found", name)
	}
	return root, nil
}

// OpenRoot returns the adapter handle for the root directory of name.
func (r *Registry) OpenRoot(ctx context.Context, name string) (*access.DirectoryHandle, error) {
	root, err := r.GetRoot(name)
	if err != nil {
		return nil, err
	}

	dir, err := root.provider.Root(ctx)
	if err != nil {
		return nil, err
	}
	return access.Wrap(dir), nil
}

// GetMetadataStore retrieves a metadata store by name.
func (r *Registry) GetMetadataStore(name string) (metadata.MetadataStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, exists := r.metadata[name]
	if !exists {
		return nil, fmt.Errorf("metadata store %q not found", name)
	}
	return store, nil
}

// GetContentStore retrieves a content store by name.
func (r *Registry) GetContentStore(name string) (content.ContentStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, exists := r.content[name]
	if !exists {
		return nil, fmt.Errorf("content store %q not found", name)
	}
	return store, nil
}

// ListRoots returns all registered root names, sorted.
func (r *Registry) ListRoots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.roots)
}

// ListMetadataStores returns all registered metadata store names, sorted.
func (r *Registry) ListMetadataStores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.metadata)
}

// ListContentStores returns all registered content store names, sorted.
func (r *Registry) ListContentStores() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.content)
}

// ListRootsUsingMetadataStore returns the roots that use the specified
// metadata store, sorted.
func (r *Registry) ListRootsUsingMetadataStore(storeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var roots []string
	for _, root := range r.roots {
		if root.MetadataStore == storeName {
			roots = append(roots, root.Name)
		}
	}
	slices.Sort(roots)
	return roots
}

// ListRootsUsingContentStore returns the roots that use the specified
// content store, sorted.
func (r *Registry) ListRootsUsingContentStore(storeName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var roots []string
	for _, root := range r.roots {
		if root.ContentStore == storeName {
			roots = append(roots, root.Name)
		}
	}
	slices.Sort(roots)
	return roots
}

// CountRoots returns the number of registered roots.
func (r *Registry) CountRoots() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roots)
}

// CountMetadataStores returns the number of registered metadata stores.
func (r *Registry) CountMetadataStores() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.metadata)
}

// CountContentStores returns the number of registered content stores.
func (r *Registry) CountContentStores() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.content)
}

// RootExists checks if a root with the given name exists in the registry.
func (r *Registry) RootExists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.roots[name]
	return exists
}

// Close stops the garbage collectors, then closes every registered store
// once and forgets all roots. Handles obtained from OpenRoot stop working
// afterwards.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	collectors := r.collectors
	r.collectors = make(map[string]*gc.Collector)
	r.mu.Unlock()

	// Collectors read metadata stores through the registry, so they are
	// stopped without holding the lock.
	var errs []error
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for name, collector := range collectors {
		if err := collector.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop collector of content store %q: %w", name, err))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, store := range r.metadata {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close metadata store %q: %w", name, err))
		}
	}
	for name, store := range r.content {
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close content store %q: %w", name, err))
		}
	}
	r.roots = make(map[string]*Root)
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
