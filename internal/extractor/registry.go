package extractor

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/sdkref/internal/symbols"
)

// Supported languages.
const (
	LanguageGo         = "go"
	LanguagePython     = "python"
	LanguageTypeScript = "typescript"
)

// DetectLanguage maps a file path to a supported language, or "" when the
// extension is not recognized.
func DetectLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return LanguageGo
	case ".py", ".pyi":
		return LanguagePython
	case ".ts", ".tsx", ".mts", ".cts":
		return LanguageTypeScript
	default:
		return ""
	}
}

// Registry routes files to the extractor for their language.
type Registry struct {
	extractors map[string]*Extractor
}

// NewRegistry creates a registry with extractors for every supported language.
func NewRegistry(opts Options, tsFunctions FunctionExportPolicy) *Registry {
	return &Registry{
		extractors: map[string]*Extractor{
			LanguageGo:         NewGoExtractor(opts),
			LanguagePython:     NewPythonExtractor(opts),
			LanguageTypeScript: NewTypeScriptExtractor(opts, tsFunctions),
		},
	}
}

// For returns the extractor for a language, or nil.
func (r *Registry) For(language string) *Extractor {
	return r.extractors[language]
}

// ForPath returns the extractor for a file path, or nil when unsupported.
func (r *Registry) ForPath(path string) *Extractor {
	return r.extractors[DetectLanguage(path)]
}

// Extract extracts entries of any supported language. Output keeps entry
// order; entries with unsupported extensions are skipped.
func (r *Registry) Extract(ctx context.Context, entries []Entry) ([]symbols.Symbol, error) {
	var out []symbols.Symbol
	var run []Entry
	var runExtractor *Extractor

	flush := func() error {
		if len(run) == 0 {
			return nil
		}
		syms, err := runExtractor.Extract(ctx, run)
		if err != nil {
			return err
		}
		out = append(out, syms...)
		run = nil
		return nil
	}

	// Consecutive entries of the same language are extracted as one batch so
	// worker pools see more than one file at a time.
	for _, entry := range entries {
		ext := r.ForPath(entry.Path)
		if ext == nil {
			continue
		}
		if ext != runExtractor {
			if err := flush(); err != nil {
				return nil, err
			}
			runExtractor = ext
		}
		run = append(run, entry)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
