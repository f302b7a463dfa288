package watcher

import (
	"context"
	"log"
)

// WatchCoordinator routes debounced file changes from a FileWatcher to the
// indexer.
type WatchCoordinator struct {
	files   FileWatcher
	indexer Indexer
	ctx     context.Context
}

// NewWatchCoordinator creates a new watch coordinator.
func NewWatchCoordinator(files FileWatcher, indexer Indexer) *WatchCoordinator {
	return &WatchCoordinator{
		files:   files,
		indexer: indexer,
	}
}

// Start begins watching, runs one full indexing pass with callbacks paused so
// edits made during the pass are picked up afterwards, then routes changes to
// the indexer. Blocks until context is cancelled.
func (c *WatchCoordinator) Start(ctx context.Context) error {
	c.ctx = ctx
	filesErr := make(chan error, 1)

	c.files.Pause()
	go func() {
		if err := c.files.Start(ctx, c.handleFileChange); err != nil {
			filesErr <- err
		}
	}()

	if stats, err := c.indexer.Run(ctx); err != nil {
		log.Printf("Error: initial indexing failed: %v", err)
	} else {
		log.Printf("✓ Indexed %d file(s): %d symbols, %d unchanged",
			stats.FilesAdded+stats.FilesModified, stats.Symbols, stats.FilesUnchanged)
	}
	c.files.Resume()

	select {
	case err := <-filesErr:
		c.cleanup()
		return err
	case <-ctx.Done():
		c.cleanup()
		return ctx.Err()
	}
}

// cleanup stops the file watcher.
func (c *WatchCoordinator) cleanup() {
	if err := c.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
}

// handleFileChange processes file change events from the file watcher.
func (c *WatchCoordinator) handleFileChange(files []string) {
	if len(files) == 0 {
		return
	}

	ctx := c.ctx
	if ctx == nil || ctx.Err() != nil {
		return
	}

	log.Printf("Processing %d file change(s)...", len(files))

	stats, err := c.indexer.Update(ctx, files)
	if err != nil {
		log.Printf("Error: indexing failed: %v", err)
		return
	}

	log.Printf("✓ Updated %d file(s), removed %d (%d symbols)",
		stats.FilesAdded+stats.FilesModified, stats.FilesDeleted, stats.Symbols)
}
