package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/sdkref/internal/extractor"
)

// StateDir is the per-project directory holding config, index and database.
// It is never discovered.
const StateDir = ".sdkref"

// Source is one tree of files sharing a namespace.
type Source struct {
	Namespace string
	Root      string   // relative to the project root, or absolute
	Include   []string // glob patterns, relative to Root
	Ignore    []string // glob patterns, relative to Root
}

// File is a discovered source file.
type File struct {
	Path      string // slash-separated, relative to the project root
	Namespace string
	Language  string
}

// Entry converts the file into an extraction entry.
func (f File) Entry() extractor.Entry {
	return extractor.Entry{Path: f.Path, Namespace: f.Namespace}
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

type compiledSource struct {
	Source
	dir     string
	include []compiledPattern
	ignore  []compiledPattern
}

// Discovery finds the files of every configured source.
type Discovery struct {
	rootDir string
	sources []compiledSource
}

// New compiles the patterns of every source.
func New(rootDir string, sources []Source) (*Discovery, error) {
	d := &Discovery{rootDir: rootDir}

	for _, src := range sources {
		cs := compiledSource{Source: src, dir: src.Root}
		if cs.dir == "" {
			cs.dir = "."
		}
		if !filepath.IsAbs(cs.dir) {
			cs.dir = filepath.Join(rootDir, cs.dir)
		}

		var err error
		if cs.include, err = compilePatterns(src.Include); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Namespace, err)
		}
		if cs.ignore, err = compilePatterns(src.Ignore); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Namespace, err)
		}
		d.sources = append(d.sources, cs)
	}

	return d, nil
}

// CompilePattern validates a glob pattern the way discovery compiles it.
func CompilePattern(pattern string) error {
	_, err := glob.Compile(pattern, '/')
	return err
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Discover walks every source and returns the matching files. Files are
// sorted by path within a source and sources keep their configured order.
// A file claimed by an earlier source is not repeated by a later one.
func (d *Discovery) Discover(ctx context.Context) ([]File, error) {
	var files []File
	seen := make(map[string]bool)

	for _, src := range d.sources {
		found, err := d.walk(ctx, src)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	return files, nil
}

func (d *Discovery) walk(ctx context.Context, src compiledSource) ([]File, error) {
	var files []File

	err := filepath.WalkDir(src.dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(src.dir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if entry.IsDir() {
			if relPath != "." && src.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if f, ok := d.fileFor(src, path, relPath); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", src.dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Match resolves a path relative to the project root to the first source
// that would discover it.
func (d *Discovery) Match(path string) (File, bool) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(d.rootDir, filepath.FromSlash(path))
	}

	for _, src := range d.sources {
		relPath, err := filepath.Rel(src.dir, abs)
		if err != nil {
			continue
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == ".." || strings.HasPrefix(relPath, "../") {
			continue
		}
		if f, ok := d.fileFor(src, abs, relPath); ok {
			return f, true
		}
	}
	return File{}, false
}

func (d *Discovery) fileFor(src compiledSource, absPath, relPath string) (File, bool) {
	if src.shouldIgnore(relPath) || !matchesAnyPattern(relPath, src.include) {
		return File{}, false
	}

	language := extractor.DetectLanguage(relPath)
	if language == "" {
		return File{}, false
	}

	return File{
		Path:      d.projectPath(absPath),
		Namespace: src.Namespace,
		Language:  language,
	}, true
}

// projectPath returns absPath relative to the project root in slash form,
// or the absolute path when it lies elsewhere.
func (d *Discovery) projectPath(absPath string) string {
	rel, err := filepath.Rel(d.rootDir, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (s compiledSource) shouldIgnore(relPath string) bool {
	if relPath == StateDir || strings.HasPrefix(relPath, StateDir+"/") {
		return true
	}

	if matchesAnyPattern(relPath, s.ignore) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return matchesAnyPattern(relPath+"/**", s.ignore)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// Root-level paths also match "**/"-prefixed patterns, so "**/*.go" covers
// both "main.go" and "pkg/util.go".
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(path) {
				return true
			}
		}
	}

	return false
}
