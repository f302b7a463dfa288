package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mvp-joe/sdkref/internal/config"
	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/indexer"
	"github.com/mvp-joe/sdkref/internal/search"
	"github.com/mvp-joe/sdkref/internal/storage"
	"github.com/mvp-joe/sdkref/internal/watcher"
)

// workspace bundles the configuration and open stores of one project.
type workspace struct {
	rootDir string
	cfg     *config.Config
	idxCfg  *indexer.Config
	store   *storage.Store
	index   *search.Index
}

// openWorkspace loads the project configuration and opens the symbol store
// and search index, creating both when they do not exist yet.
func openWorkspace(rootDir string) (*workspace, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	idxCfg := cfg.ToIndexerConfig(rootDir)

	for _, path := range []string{idxCfg.IndexPath, idxCfg.StoragePath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	store, err := storage.Open(idxCfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol store: %w", err)
	}

	index, err := search.Open(idxCfg.IndexPath, idxCfg.BatchSize)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	return &workspace{
		rootDir: rootDir,
		cfg:     cfg,
		idxCfg:  idxCfg,
		store:   store,
		index:   index,
	}, nil
}

// indexExists reports whether the project has been indexed before, without
// creating anything.
func indexExists(rootDir string) (bool, error) {
	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return false, fmt.Errorf("failed to load configuration: %w", err)
	}
	idxCfg := cfg.ToIndexerConfig(rootDir)
	if _, err := os.Stat(idxCfg.IndexPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// newIndexer creates an indexer writing to the workspace stores.
func (w *workspace) newIndexer(force bool, progress indexer.ProgressReporter) (*indexer.Indexer, error) {
	cfg := *w.idxCfg
	cfg.Force = force
	idx, err := indexer.New(&cfg, w.store, w.index, progress)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexer: %w", err)
	}
	return idx, nil
}

// newWatcher watches the roots of every configured source and reports the
// files discovery would pick up.
func (w *workspace) newWatcher() (watcher.FileWatcher, error) {
	rootDir, err := filepath.Abs(w.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	disc, err := discovery.New(rootDir, w.idxCfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, src := range w.idxCfg.Sources {
		dir := src.Root
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(rootDir, filepath.FromSlash(dir))
		}
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}

	fw, err := watcher.NewFileWatcher(watcher.Options{
		Dirs:     dirs,
		Match:    watcher.DiscoveryMatcher(disc),
		Debounce: time.Duration(w.cfg.Watch.DebounceMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return fw, nil
}

// Close closes the search index and the symbol store.
func (w *workspace) Close() error {
	var firstErr error
	if err := w.index.Close(); err != nil {
		firstErr = err
	}
	if err := w.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
