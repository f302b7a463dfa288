package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/search"
	"github.com/mvp-joe/sdkref/internal/storage"
)

// Test Plan for the indexer:
// - A first run extracts every discovered file into the store and the index
// - A second run over unchanged files extracts nothing
// - Modified files replace their symbols and documents
// - Files removed from disk are removed from the store and the index
// - Force re-extracts unchanged files, served from the extraction cache
// - Update handles changed, removed and unmatched paths
// - Progress reporter sees every phase
// - Changing extraction settings re-extracts affected files only

const (
	goSource = "package calc\n\n// Add sums.\nfunc Add(a, b int) int { return a + b }\n"
	pySource = "def greet(name: str) -> str:\n    return name\n"
	tsSource = "export class Client {\n  fetch(id: string): string {\n    return id;\n  }\n}\n"
)

type testEnv struct {
	root  string
	store *storage.Store
	index *search.Index
	idx   *Indexer
}

func newTestEnv(t *testing.T, cacheSize int, force bool) *testEnv {
	t.Helper()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go/calc.go"), goSource)
	writeFile(t, filepath.Join(root, "py/greet.py"), pySource)
	writeFile(t, filepath.Join(root, "ts/client.ts"), tsSource)
	writeFile(t, filepath.Join(root, "README.md"), "# docs\n")

	store := storage.NewTestStore(t)

	index, err := search.NewMemOnly(2)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	cfg := &Config{
		RootDir: root,
		Sources: []discovery.Source{{
			Namespace: "sdk",
			Root:      ".",
			Include:   []string{"**/*.go", "**/*.py", "**/*.ts"},
		}},
		Workers:   2,
		CacheSize: cacheSize,
		Force:     force,
	}
	idx, err := New(cfg, store, index, nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return &testEnv{root: root, store: store, index: index, idx: idx}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// indexedNames lists every document name in the index, sorted.
func (e *testEnv) indexedNames(t *testing.T) []string {
	t.Helper()
	results, err := e.index.Search(context.Background(), "", &search.Options{Limit: 100, IncludeDeprecated: true})
	require.NoError(t, err)
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Document.Name)
	}
	sort.Strings(out)
	return out
}

func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	files, err := e.store.Files(context.Background())
	require.NoError(t, err)
	out := make([]string, 0, len(files))
	for path := range files {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

func TestIndexer_FirstRun(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	stats, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.FilesDiscovered)
	assert.Equal(t, 3, stats.FilesAdded)
	assert.Equal(t, 0, stats.FilesUnchanged)
	assert.Equal(t, 3, stats.Symbols)
	assert.Equal(t, 4, stats.Documents, "class documents include their methods")

	assert.Equal(t, []string{"go/calc.go", "py/greet.py", "ts/client.ts"}, env.storedFiles(t))
	assert.Equal(t, []string{"Add", "Client", "fetch", "greet"}, env.indexedNames(t))

	syms, err := env.store.FileSymbols(context.Background(), "go/calc.go")
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "// Add sums.", syms[0].Comments)
	assert.Equal(t, "sdk", syms[0].Namespace)
}

func TestIndexer_UnchangedFilesAreSkipped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	_, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	stats, err := env.idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.FilesUnchanged)
	assert.Equal(t, 0, stats.FilesAdded+stats.FilesModified+stats.FilesDeleted)
	assert.Equal(t, 0, stats.Documents)

	count, err := env.index.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestIndexer_ModifiedFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	_, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	writeFile(t, filepath.Join(env.root, "go/calc.go"), "package calc\n\nfunc Subtract(a, b int) int { return a - b }\n\nfunc Negate(a int) int { return -a }\n")

	stats, err := env.idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesModified)
	assert.Equal(t, 2, stats.FilesUnchanged)
	assert.Equal(t, 2, stats.Symbols)

	assert.Equal(t, []string{"Client", "Negate", "Subtract", "fetch", "greet"}, env.indexedNames(t))

	syms, err := env.store.FileSymbols(context.Background(), "go/calc.go")
	require.NoError(t, err)
	assert.Len(t, syms, 2)
}

func TestIndexer_DeletedFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	_, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(env.root, "ts/client.ts")))

	stats, err := env.idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesDeleted)
	assert.Equal(t, 2, stats.FilesUnchanged)

	assert.Equal(t, []string{"go/calc.go", "py/greet.py"}, env.storedFiles(t))
	assert.Equal(t, []string{"Add", "greet"}, env.indexedNames(t))
}

func TestIndexer_ForceUsesCache(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 100, true)
	first, err := env.idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.CacheHits)

	second, err := env.idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second.FilesModified)
	assert.Equal(t, 3, second.CacheHits)
	assert.Equal(t, 3, second.Symbols)
	assert.Equal(t, 4, second.Documents)

	assert.Equal(t, []string{"Add", "Client", "fetch", "greet"}, env.indexedNames(t))
}

func TestIndexer_Update(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	_, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	writeFile(t, filepath.Join(env.root, "py/greet.py"), "def farewell(name: str) -> str:\n    return name\n")
	writeFile(t, filepath.Join(env.root, "py/extra.py"), "def extra():\n    pass\n")
	require.NoError(t, os.Remove(filepath.Join(env.root, "go/calc.go")))

	stats, err := env.idx.Update(context.Background(), []string{
		filepath.Join(env.root, "py/greet.py"),
		"py/extra.py",
		filepath.Join(env.root, "go/calc.go"),
		filepath.Join(env.root, "README.md"),
		"py/extra.py",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.FilesDiscovered)
	assert.Equal(t, 1, stats.FilesAdded)
	assert.Equal(t, 1, stats.FilesModified)
	assert.Equal(t, 1, stats.FilesDeleted)

	assert.Equal(t, []string{"py/extra.py", "py/greet.py", "ts/client.ts"}, env.storedFiles(t))
	assert.Equal(t, []string{"Client", "extra", "farewell", "fetch"}, env.indexedNames(t))
}

func TestIndexer_UpdateIgnoresUntrackedRemovals(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	stats, err := env.idx.Update(context.Background(), []string{"gone/missing.go"})
	require.NoError(t, err)
	assert.Equal(t, Stats{Duration: stats.Duration}, *stats)
}

func TestIndexer_ContextCancelled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.idx.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, env.storedFiles(t))
}

type recordingReporter struct {
	mu     sync.Mutex
	events []string
	files  []string
	stats  *Stats
}

func (r *recordingReporter) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingReporter) OnDiscoveryStart()                { r.record("discovery") }
func (r *recordingReporter) OnDiscoveryComplete(files int)    { r.record("discovered") }
func (r *recordingReporter) OnExtractionStart(totalFiles int) { r.record("extraction") }
func (r *recordingReporter) OnIndexingStart(totalDocs int)    { r.record("indexing") }

func (r *recordingReporter) OnFileProcessed(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, fileName)
}

func (r *recordingReporter) OnComplete(stats *Stats) {
	r.record("complete")
	r.stats = stats
}

func TestIndexer_ProgressReporting(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, 0, false)
	reporter := &recordingReporter{}
	env.idx.progress = reporter

	stats, err := env.idx.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"discovery", "discovered", "extraction", "indexing", "complete"}, reporter.events)
	assert.Equal(t, []string{"go/calc.go", "py/greet.py", "ts/client.ts"}, reporter.files)
	assert.Same(t, stats, reporter.stats)
}

func TestIndexer_ExtractionSettingsChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go/calc.go"), goSource)
	writeFile(t, filepath.Join(root, "ts/api.ts"), "function helper(): void {}\n\nexport function api(): void {}\n")

	store := storage.NewTestStore(t)
	index, err := search.NewMemOnly(2)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	run := func(functions extractor.FunctionExportPolicy) *Stats {
		cfg := &Config{
			RootDir: root,
			Sources: []discovery.Source{{
				Namespace: "sdk",
				Root:      ".",
				Include:   []string{"**/*.go", "**/*.ts"},
			}},
			TypeScriptFunctions: functions,
			CacheSize:           16,
		}
		idx, err := New(cfg, store, index, nil)
		require.NoError(t, err)
		defer idx.Close()

		stats, err := idx.Run(context.Background())
		require.NoError(t, err)
		return stats
	}
	env := &testEnv{root: root, store: store, index: index}

	stats := run("")
	assert.Equal(t, 2, stats.FilesAdded)
	assert.Equal(t, []string{"Add", "api"}, env.indexedNames(t))

	stats = run(extractor.FunctionsExported)
	assert.Equal(t, 2, stats.FilesUnchanged, "an unset policy matches the default")

	stats = run(extractor.FunctionsAll)
	assert.Equal(t, 1, stats.FilesModified)
	assert.Equal(t, 1, stats.FilesUnchanged, "Go files do not depend on the TypeScript policy")
	assert.Equal(t, []string{"Add", "api", "helper"}, env.indexedNames(t))

	syms, err := store.FileSymbols(context.Background(), "ts/api.ts")
	require.NoError(t, err)
	assert.Len(t, syms, 2)

	stats = run(extractor.FunctionsExported)
	assert.Equal(t, 1, stats.FilesModified)
	assert.Equal(t, []string{"Add", "api"}, env.indexedNames(t))
}
