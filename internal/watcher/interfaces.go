package watcher

import (
	"context"

	"github.com/mvp-joe/sdkref/internal/indexer"
)

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Indexer is the subset of the indexer driven by the coordinator.
type Indexer interface {
	// Run performs a full indexing pass.
	Run(ctx context.Context) (*indexer.Stats, error)

	// Update re-indexes only the given paths.
	Update(ctx context.Context, paths []string) (*indexer.Stats, error)
}
