package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

var (
	// ErrParse indicates the parser produced no tree for a file.
	ErrParse = errors.New("failed to parse source")

	// ErrSyntax indicates a file's tree contains syntax errors and the
	// extractor is configured to reject such files.
	ErrSyntax = errors.New("source contains syntax errors")
)

// SyntaxPolicy decides what happens to files whose tree contains error nodes.
type SyntaxPolicy string

const (
	// SyntaxPartial extracts whatever the best-effort tree still recognizes.
	SyntaxPartial SyntaxPolicy = "partial"
	// SyntaxReject skips files with syntax errors entirely.
	SyntaxReject SyntaxPolicy = "reject"
)

// Entry is one file to extract, tagged with a caller-defined namespace.
type Entry struct {
	Path      string
	Namespace string
}

// Visitor recognizes the declaration nodes of one grammar. Visit returns nil
// for nodes that are not declarations or fail the visibility rule.
type Visitor interface {
	Visit(f *File, node *sitter.Node) *symbols.Symbol
}

// File is the per-file state handed to a Visitor. It lives for a single
// extraction call.
type File struct {
	Path      string
	Namespace string
	Language  string
	Source    []byte
	Lines     []string
}

// Text returns the literal source span of node.
func (f *File) Text(node *sitter.Node) string {
	return nodeText(node, f.Source)
}

// Content reconstructs the text spanned by node.
func (f *File) Content(node *sitter.Node) string {
	return NodeContent(node, f.Lines)
}

// Comments returns the comment block preceding node.
func (f *File) Comments(node *sitter.Node) string {
	return Comments(node, f.Source)
}

// newSymbol fills the fields shared by every symbol kind. anchor is the node
// comments are collected from; it differs from node when the declaration is
// wrapped (export statements, decorators, grouped declarations).
func (f *File) newSymbol(name string, kind symbols.Kind, node, anchor *sitter.Node, meta symbols.Meta) *symbols.Symbol {
	comments := f.Comments(anchor)
	return &symbols.Symbol{
		Name:       name,
		Type:       kind,
		File:       f.Path,
		Line:       int(node.StartPosition().Row),
		Content:    f.Content(node),
		Comments:   comments,
		Namespace:  f.Namespace,
		Language:   f.Language,
		Deprecated: IsDeprecated(comments),
		Meta:       meta,
	}
}

// Options configures an Extractor.
type Options struct {
	// Workers is the number of files extracted concurrently. Values below 2
	// extract sequentially.
	Workers int

	// SyntaxPolicy controls handling of files with syntax errors.
	SyntaxPolicy SyntaxPolicy

	// Logger receives per-file warnings. Defaults to the standard logger.
	Logger *log.Logger

	// ReadFile overrides how entry paths are read.
	ReadFile func(path string) ([]byte, error)
}

// Extractor turns source files of one language into symbols.
type Extractor struct {
	lang     string
	language *sitter.Language
	visitor  Visitor
	opts     Options

	// dialects overrides the grammar for specific file extensions.
	dialects map[string]*sitter.Language
}

func newExtractor(lang string, language *sitter.Language, visitor Visitor, opts Options) *Extractor {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	if opts.SyntaxPolicy == "" {
		opts.SyntaxPolicy = SyntaxPartial
	}
	return &Extractor{
		lang:     lang,
		language: language,
		visitor:  visitor,
		opts:     opts,
	}
}

// Language returns the language name this extractor handles.
func (e *Extractor) Language() string {
	return e.lang
}

// withDialect parses files with the given extension using language instead
// of the extractor's default grammar.
func (e *Extractor) withDialect(ext string, language *sitter.Language) *Extractor {
	if e.dialects == nil {
		e.dialects = make(map[string]*sitter.Language)
	}
	e.dialects[strings.ToLower(ext)] = language
	return e
}

func (e *Extractor) grammarFor(path string) *sitter.Language {
	if language, ok := e.dialects[strings.ToLower(filepath.Ext(path))]; ok {
		return language
	}
	return e.language
}

// Extract reads and extracts every entry, returning symbols in entry order.
// Unreadable or rejected files are logged and skipped; only context
// cancellation aborts the batch.
func (e *Extractor) Extract(ctx context.Context, entries []Entry) ([]symbols.Symbol, error) {
	perFile := make([][]symbols.Symbol, len(entries))

	if e.opts.Workers < 2 || len(entries) < 2 {
		for i, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perFile[i] = e.extractEntry(entry)
		}
		return flatten(perFile), nil
	}

	numWorkers := min(e.opts.Workers, len(entries))
	workCh := make(chan int, len(entries))
	for i := range entries {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					return
				}
				perFile[i] = e.extractEntry(entries[i])
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return flatten(perFile), nil
}

func (e *Extractor) extractEntry(entry Entry) []symbols.Symbol {
	source, err := e.opts.ReadFile(entry.Path)
	if err != nil {
		e.opts.Logger.Printf("Warning: failed to read %s: %v", entry.Path, err)
		return nil
	}

	syms, err := e.ExtractFromFile(entry.Path, source, entry.Namespace)
	if err != nil {
		e.opts.Logger.Printf("Warning: skipping %s: %v", entry.Path, err)
		return nil
	}
	return syms
}

// ExtractFromFile parses source and returns the symbols it declares, in
// source order.
func (e *Extractor) ExtractFromFile(path string, source []byte, namespace string) ([]symbols.Symbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(e.grammarFor(path)); err != nil {
		return nil, fmt.Errorf("failed to set %s grammar: %w", e.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, path)
	}
	defer tree.Close()

	root := tree.RootNode()
	if e.opts.SyntaxPolicy == SyntaxReject && root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, path)
	}

	file := &File{
		Path:      path,
		Namespace: namespace,
		Language:  e.lang,
		Source:    source,
		Lines:     splitLines(source),
	}

	var result []symbols.Symbol
	walkTree(root, func(n *sitter.Node) bool {
		if sym := e.visitor.Visit(file, n); sym != nil {
			result = append(result, *sym)
		}
		return true
	})
	return result, nil
}

func flatten(perFile [][]symbols.Symbol) []symbols.Symbol {
	total := 0
	for _, syms := range perFile {
		total += len(syms)
	}
	out := make([]symbols.Symbol, 0, total)
	for _, syms := range perFile {
		out = append(out, syms...)
	}
	return out
}
