package watcher

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// skippedDirs are directory names never watched.
var skippedDirs = map[string]bool{
	discovery.StateDir: true,
	".git":             true,
	"node_modules":     true,
	"__pycache__":      true,
}

// Options configures a file watcher.
type Options struct {
	// Dirs are the source roots, watched recursively.
	Dirs []string

	// Match decides which changed paths are reported. Removed paths are
	// matched too, so it must not require the file to exist. Defaults to
	// any file with a supported language.
	Match func(path string) bool

	// Debounce is the quiet period before a batch fires; zero or less uses
	// DefaultDebounce.
	Debounce time.Duration
}

// DiscoveryMatcher reports the paths that disc would discover.
func DiscoveryMatcher(disc *discovery.Discovery) func(path string) bool {
	return func(path string) bool {
		_, ok := disc.Match(path)
		return ok
	}
}

func supportedLanguage(path string) bool {
	return extractor.DetectLanguage(path) != ""
}

// pendingChanges is the set of changed paths not yet delivered.
type pendingChanges struct {
	mu     sync.Mutex
	paths  map[string]struct{}
	paused bool
}

func (p *pendingChanges) add(path string) {
	p.mu.Lock()
	p.paths[path] = struct{}{}
	p.mu.Unlock()
}

func (p *pendingChanges) setPaused(paused bool) (was bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	was, p.paused = p.paused, paused
	return was
}

// take drains the set in sorted order. Nothing is drained while paused.
func (p *pendingChanges) take() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused || len(p.paths) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.paths))
	for path := range p.paths {
		out = append(out, path)
	}
	p.paths = make(map[string]struct{})
	sort.Strings(out)
	return out
}

// fileWatcher implements FileWatcher on top of fsnotify.
type fileWatcher struct {
	fs       *fsnotify.Watcher
	match    func(path string) bool
	debounce time.Duration
	pending  *pendingChanges

	deliverMu sync.Mutex // guards callback; one delivery at a time
	callback  func(files []string)

	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}
}

// NewFileWatcher creates a watcher over opts.Dirs. Every directory below a
// root is watched, except state, VCS and dependency directories.
func NewFileWatcher(opts Options) (FileWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Match == nil {
		opts.Match = supportedLanguage
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw := &fileWatcher{
		fs:       fs,
		match:    opts.Match,
		debounce: opts.Debounce,
		pending:  &pendingChanges{paths: make(map[string]struct{})},
		done:     make(chan struct{}),
	}

	for _, dir := range opts.Dirs {
		if err := fw.watchTree(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Start delivers debounced batches of changed paths to callback until ctx
// is cancelled or Stop is called.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.deliverMu.Lock()
	fw.callback = callback
	fw.deliverMu.Unlock()

	ctx, fw.cancel = context.WithCancel(ctx)
	go fw.loop(ctx)
	return nil
}

// Stop ends the event loop and releases the fsnotify watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.done
		}
		err = fw.fs.Close()
	})
	return err
}

// Pause holds batches back; changes keep accumulating.
func (fw *fileWatcher) Pause() {
	fw.pending.setPaused(true)
}

// Resume delivers everything accumulated while paused, then continues.
func (fw *fileWatcher) Resume() {
	if fw.pending.setPaused(false) {
		fw.deliver()
	}
}

// deliver hands pending changes to the callback. Changes stay pending until
// Start has installed one.
func (fw *fileWatcher) deliver() {
	fw.deliverMu.Lock()
	defer fw.deliverMu.Unlock()
	if fw.callback == nil {
		return
	}
	if files := fw.pending.take(); len(files) > 0 {
		fw.callback(files)
	}
}

func (fw *fileWatcher) loop(ctx context.Context) {
	defer close(fw.done)

	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()

	// Changes may have been resumed before the callback existed.
	fw.deliver()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.fs.Events:
			if !ok {
				return
			}
			if fw.handle(event) {
				timer.Reset(fw.debounce)
			}

		case <-timer.C:
			fw.deliver()

		case err, ok := <-fw.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

// handle records a relevant event and reports whether it was recorded.
// Renames count as removals of the old path; the new path arrives as a Create.
func (fw *fileWatcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skippedDirs[info.Name()] {
				if err := fw.watchTree(event.Name); err != nil {
					log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
				}
			}
			return false
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if !fw.match(event.Name) {
		return false
	}

	fw.pending.add(event.Name)
	return true
}

// watchTree adds root and its subdirectories to the fsnotify watcher.
func (fw *fileWatcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && skippedDirs[entry.Name()] {
			return filepath.SkipDir
		}
		if err := fw.fs.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
