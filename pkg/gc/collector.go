// Package gc removes orphaned content: objects in a content store that no
// metadata entry references and no open writable stream is staging into.
//
// Orphans appear when:
//   - Deleting replaced or removed content fails
//   - The process stops between removing an entry and deleting its content
//   - The process stops while a writable stream is open
package gc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/fsaccess/internal/logger"
	"github.com/marmos91/fsaccess/pkg/store/content"
	"github.com/marmos91/fsaccess/pkg/store/metadata"
)

// ReferenceSource reports the content IDs still in use. Every
// metadata.MetadataStore is one.
type ReferenceSource interface {
	GetAllContentIDs(ctx context.Context) ([]metadata.ContentID, error)
}

// Collector performs periodic garbage collection on one content store.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	store   content.GarbageCollectableStore
	refs    ReferenceSource
	tracker *Tracker
	config  Config

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// Config contains configuration for the garbage collector.
type Config struct {
	// Enabled controls whether Start launches the background worker
	Enabled bool

	// Interval is how often to run garbage collection (default: 24h)
	Interval time.Duration

	// BatchSize is how many orphaned items to delete per batch (default: 1000)
	BatchSize int

	// DryRun logs what would be deleted without deleting it
	DryRun bool
}

// NewCollector creates a collector for store. The collector is not started.
//
// Parameters:
//   - store: Content store to sweep; must implement GarbageCollectableStore
//   - refs: Source of referenced content IDs
//   - tracker: Content staged by open streams (nil = none)
//   - config: Garbage collection configuration
//
// Returns:
//   - *Collector: Initialized collector (not started)
//   - error: If store cannot list or batch-delete its content
func NewCollector(store content.ContentStore, refs ReferenceSource, tracker *Tracker, config Config) (*Collector, error) {
	gcStore, ok := store.(content.GarbageCollectableStore)
	if !ok {
		return nil, fmt.Errorf("content store %T does not implement GarbageCollectableStore", store)
	}
	if refs == nil {
		return nil, fmt.Errorf("reference source is required")
	}

	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}

	return &Collector{
		store:   gcStore,
		refs:    refs,
		tracker: tracker,
		config:  config,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start launches the background worker. Calling it again, or on a disabled
// collector, does nothing.
func (c *Collector) Start() {
	if !c.config.Enabled {
		logger.Debug("GC: disabled")
		return
	}

	c.startOnce.Do(func() {
		c.started.Store(true)
		logger.Info("Starting garbage collector: interval=%s batch_size=%d dry_run=%v",
			c.config.Interval, c.config.BatchSize, c.config.DryRun)
		go c.worker()
	})
}

// Stop signals the worker and waits for it to finish the run in progress.
// Safe to call multiple times and on a collector that never started.
//
// Returns ctx.Err() when ctx expires first.
func (c *Collector) Stop(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	c.stopOnce.Do(func() { close(c.stopCh) })

	select {
	case <-c.doneCh:
		return nil
	case <-ctx.Done():
		logger.Warn("GC: shutdown timeout")
		return ctx.Err()
	}
}

// RunNow performs one collection and blocks until it completes.
func (c *Collector) RunNow(ctx context.Context) (*Stats, error) {
	return c.collect(ctx)
}

func (c *Collector) worker() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			stats, err := c.collect(ctx)
			cancel()

			if err != nil {
				logger.Error("Garbage collection failed: %v", err)
			} else {
				logger.Info("Garbage collection completed: %s", stats.Summary())
			}

		case <-c.stopCh:
			return
		}
	}
}

// collect performs a single garbage collection run:
//  1. List every content ID in the store
//  2. Snapshot the content staged by open streams
//  3. Get every content ID referenced by metadata
//  4. Delete what is listed but neither staged nor referenced
//
// Listing comes first. Content created afterwards cannot be a candidate,
// and content listed earlier is either still staged at step 2 or already
// published to metadata by step 3.
func (c *Collector) collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	defer func() { stats.EndTime = time.Now() }()

	// ========================================================================
	// Step 1: Existing content
	// ========================================================================

	existing, err := c.store.ListAllContent(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list content: %w", err)
	}
	stats.ExistingCount = uint64(len(existing))

	// ========================================================================
	// Step 2-3: Content in use
	// ========================================================================

	inUse := make(map[metadata.ContentID]struct{})
	for _, id := range c.tracker.Pending() {
		inUse[id] = struct{}{}
	}
	stats.PendingCount = uint64(len(inUse))

	referenced, err := c.refs.GetAllContentIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to get referenced content: %w", err)
	}
	stats.ReferencedCount = uint64(len(referenced))
	for _, id := range referenced {
		inUse[id] = struct{}{}
	}

	// ========================================================================
	// Step 4: Delete orphans
	// ========================================================================

	var orphaned []metadata.ContentID
	for _, id := range existing {
		if _, ok := inUse[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	stats.OrphanedCount = uint64(len(orphaned))

	if len(orphaned) == 0 {
		return stats, nil
	}

	if c.config.DryRun {
		for i, id := range orphaned {
			if i == 10 {
				logger.Info("GC: dry run ... and %d more", len(orphaned)-10)
				break
			}
			logger.Info("GC: dry run would delete %s", id)
		}
		return stats, nil
	}

	for i := 0; i < len(orphaned); i += c.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		batch := orphaned[i:min(i+c.config.BatchSize, len(orphaned))]

		failures, err := c.store.DeleteBatch(ctx, batch)
		if err != nil {
			logger.Warn("GC: batch delete failed: %v", err)
			stats.FailedCount += uint64(len(batch))
			continue
		}

		stats.DeletedCount += uint64(len(batch) - len(failures))
		stats.FailedCount += uint64(len(failures))
		for id, ferr := range failures {
			logger.Debug("GC: failed to delete %s: %v", id, ferr)
		}
	}

	return stats, nil
}

// Stats contains statistics from a garbage collection run.
type Stats struct {
	StartTime       time.Time // When collection started
	EndTime         time.Time // When collection ended
	ExistingCount   uint64    // ContentIDs in the content store
	PendingCount    uint64    // ContentIDs staged by open streams
	ReferencedCount uint64    // ContentIDs referenced by metadata
	OrphanedCount   uint64    // ContentIDs found orphaned
	DeletedCount    uint64    // Orphans deleted
	FailedCount     uint64    // Orphans that failed to delete
}

// Duration returns the total collection duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the collection.
func (s *Stats) Summary() string {
	return fmt.Sprintf("existing=%d pending=%d referenced=%d orphaned=%d deleted=%d failed=%d duration=%s",
		s.ExistingCount, s.PendingCount, s.ReferencedCount, s.OrphanedCount,
		s.DeletedCount, s.FailedCount, s.Duration())
}
