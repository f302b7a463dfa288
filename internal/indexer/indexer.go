package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/search"
	"github.com/mvp-joe/sdkref/internal/storage"
	"github.com/mvp-joe/sdkref/internal/symbols"
)

// Config contains configuration for the indexer.
type Config struct {
	// Root directory of the project; source roots and stored paths are
	// relative to it.
	RootDir string

	Sources []discovery.Source

	// Extraction settings
	Workers             int
	SyntaxPolicy        extractor.SyntaxPolicy
	TypeScriptFunctions extractor.FunctionExportPolicy
	CacheSize           int

	// Output locations
	IndexPath   string
	BatchSize   int
	StoragePath string

	// Force re-extracts files whose content hash is unchanged.
	Force bool
}

// SymbolStore persists extracted symbols per file.
type SymbolStore interface {
	ReplaceFile(ctx context.Context, rec storage.FileRecord, syms []symbols.Symbol) error
	DeleteFiles(ctx context.Context, files []string) error
	Files(ctx context.Context) (map[string]storage.FileRecord, error)
}

// Stats describes one indexing pass.
type Stats struct {
	FilesDiscovered int           `json:"filesDiscovered"`
	FilesAdded      int           `json:"filesAdded"`
	FilesModified   int           `json:"filesModified"`
	FilesDeleted    int           `json:"filesDeleted"`
	FilesUnchanged  int           `json:"filesUnchanged"`
	FilesSkipped    int           `json:"filesSkipped"`
	Symbols         int           `json:"symbols"`
	Documents       int           `json:"documents"`
	CacheHits       int           `json:"cacheHits"`
	Duration        time.Duration `json:"duration"`
}

// Indexer keeps the symbol store and search index in step with the
// configured sources.
type Indexer struct {
	config    *Config
	discovery *discovery.Discovery
	registry  *extractor.Registry
	cache     *extractionCache
	store     SymbolStore
	sink      search.Sink
	progress  ProgressReporter

	mu      sync.Mutex        // serializes passes
	sources map[string][]byte // sources read for the current pass
}

// pendingFile is a discovered file whose content changed since it was stored.
type pendingFile struct {
	discovery.File
	source []byte
	hash   string
}

// New creates an indexer writing to store and sink. A nil progress reporter
// reports nothing.
func New(cfg *Config, store SymbolStore, sink search.Sink, progress ProgressReporter) (*Indexer, error) {
	rootDir, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root directory: %w", err)
	}
	cfg.RootDir = rootDir

	disc, err := discovery.New(rootDir, cfg.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to create file discovery: %w", err)
	}

	cache, err := newExtractionCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	idx := &Indexer{
		config:    cfg,
		discovery: disc,
		cache:     cache,
		store:     store,
		sink:      sink,
		progress:  progress,
	}
	idx.registry = extractor.NewRegistry(extractor.Options{
		Workers:      cfg.Workers,
		SyntaxPolicy: cfg.SyntaxPolicy,
		ReadFile:     idx.readFile,
	}, cfg.TypeScriptFunctions)

	return idx, nil
}

// settings fingerprints the extraction options that affect a language's
// output, so changing them re-extracts files stored under the old ones.
func (idx *Indexer) settings(language string) string {
	syntax := idx.config.SyntaxPolicy
	if syntax == "" {
		syntax = extractor.SyntaxPartial
	}
	if language != extractor.LanguageTypeScript {
		return "syntax=" + string(syntax)
	}
	functions := idx.config.TypeScriptFunctions
	if functions == "" {
		functions = extractor.FunctionsExported
	}
	return "syntax=" + string(syntax) + ";functions=" + string(functions)
}

// Run discovers every source file, re-extracts those whose content changed,
// and removes files that disappeared.
func (idx *Indexer) Run(ctx context.Context) (*Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := time.Now()

	idx.progress.OnDiscoveryStart()
	files, err := idx.discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	idx.progress.OnDiscoveryComplete(len(files))

	existing, err := idx.store.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored files: %w", err)
	}

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.Path] = true
	}
	var deleted []string
	for path := range existing {
		if !seen[path] {
			deleted = append(deleted, path)
		}
	}
	sort.Strings(deleted)

	stats := &Stats{FilesDiscovered: len(files)}
	if err := idx.apply(ctx, files, existing, deleted, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	idx.progress.OnComplete(stats)
	return stats, nil
}

// Update re-indexes only the given paths, as reported by a file watcher.
// Paths may be absolute or relative to the root. Paths that no longer exist
// or no longer match a source are removed.
func (idx *Indexer) Update(ctx context.Context, paths []string) (*Stats, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	start := time.Now()

	existing, err := idx.store.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored files: %w", err)
	}

	var files []discovery.File
	var deleted []string
	seen := make(map[string]bool)

	for _, p := range paths {
		rel := idx.relPath(p)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		if f, ok := idx.discovery.Match(p); ok {
			if _, err := os.Stat(idx.absPath(f.Path)); err == nil {
				files = append(files, f)
				continue
			}
		}
		if _, tracked := existing[rel]; tracked {
			deleted = append(deleted, rel)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	sort.Strings(deleted)

	stats := &Stats{FilesDiscovered: len(files)}
	if err := idx.apply(ctx, files, existing, deleted, stats); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	idx.progress.OnComplete(stats)
	return stats, nil
}

// apply deletes removed files, then extracts, stores and indexes the files
// whose content changed.
func (idx *Indexer) apply(ctx context.Context, files []discovery.File, existing map[string]storage.FileRecord, deleted []string, stats *Stats) error {
	if len(deleted) > 0 {
		if err := idx.store.DeleteFiles(ctx, deleted); err != nil {
			return fmt.Errorf("failed to delete files from store: %w", err)
		}
		if err := idx.sink.DeleteFiles(ctx, deleted); err != nil {
			return fmt.Errorf("failed to delete files from index: %w", err)
		}
		stats.FilesDeleted += len(deleted)
	}

	var changed []pendingFile
	for _, f := range files {
		source, err := os.ReadFile(idx.absPath(f.Path))
		if err != nil {
			log.Printf("Warning: failed to read %s: %v", f.Path, err)
			stats.FilesSkipped++
			continue
		}

		hash := contentHash(idx.settings(f.Language), f.Language, f.Path, f.Namespace, source)
		prev, tracked := existing[f.Path]
		if tracked && prev.ContentHash == hash && !idx.config.Force {
			stats.FilesUnchanged++
			continue
		}
		if tracked {
			stats.FilesModified++
		} else {
			stats.FilesAdded++
		}
		changed = append(changed, pendingFile{File: f, source: source, hash: hash})
	}

	if len(changed) == 0 {
		return nil
	}

	idx.progress.OnExtractionStart(len(changed))
	perFile, err := idx.extract(ctx, changed, stats)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	var docs []search.Document
	paths := make([]string, 0, len(changed))
	for _, p := range changed {
		syms := perFile[p.Path]
		rec := storage.FileRecord{
			Path:        p.Path,
			Language:    p.Language,
			Namespace:   p.Namespace,
			ContentHash: p.hash,
		}
		if err := idx.store.ReplaceFile(ctx, rec, syms); err != nil {
			return fmt.Errorf("failed to store %s: %w", p.Path, err)
		}

		stats.Symbols += len(syms)
		docs = append(docs, search.DocumentsFor(syms)...)
		paths = append(paths, p.Path)
		idx.progress.OnFileProcessed(p.Path)
	}

	idx.progress.OnIndexingStart(len(docs))
	if err := idx.sink.DeleteFiles(ctx, paths); err != nil {
		return fmt.Errorf("failed to clear stale documents: %w", err)
	}
	if err := idx.sink.Index(ctx, docs); err != nil {
		return fmt.Errorf("failed to index documents: %w", err)
	}
	stats.Documents += len(docs)

	return nil
}

// extract returns the symbols of each changed file, served from the cache
// when the same content was extracted before.
func (idx *Indexer) extract(ctx context.Context, changed []pendingFile, stats *Stats) (map[string][]symbols.Symbol, error) {
	result := make(map[string][]symbols.Symbol, len(changed))

	var misses []pendingFile
	var entries []extractor.Entry
	idx.sources = make(map[string][]byte)
	defer func() { idx.sources = nil }()

	for _, p := range changed {
		if syms, ok := idx.cache.Get(p.hash); ok {
			result[p.Path] = syms
			stats.CacheHits++
			continue
		}
		idx.sources[p.Path] = p.source
		misses = append(misses, p)
		entries = append(entries, p.Entry())
	}

	syms, err := idx.registry.Extract(ctx, entries)
	if err != nil {
		return nil, err
	}
	for _, sym := range syms {
		result[sym.File] = append(result[sym.File], sym)
	}

	for _, p := range misses {
		idx.cache.Set(p.hash, result[p.Path])
	}
	return result, nil
}

// readFile serves sources already read for the current pass.
func (idx *Indexer) readFile(path string) ([]byte, error) {
	if source, ok := idx.sources[path]; ok {
		return source, nil
	}
	return os.ReadFile(idx.absPath(path))
}

func (idx *Indexer) absPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(idx.config.RootDir, filepath.FromSlash(path))
}

func (idx *Indexer) relPath(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(idx.config.RootDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Close releases the extraction cache. The store and sink belong to the
// caller.
func (idx *Indexer) Close() error {
	idx.cache.Close()
	return nil
}
