package config

import (
	"path/filepath"
	"strings"

	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/indexer"
)

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the project root; relative index and
// storage paths are resolved against it.
func (c *Config) ToIndexerConfig(rootDir string) *indexer.Config {
	sources := make([]discovery.Source, 0, len(c.Sources))
	for _, src := range c.Sources {
		sources = append(sources, discovery.Source{
			Namespace: src.Namespace,
			Root:      src.Root,
			Include:   src.Include,
			Ignore:    src.Ignore,
		})
	}

	return &indexer.Config{
		RootDir:             rootDir,
		Sources:             sources,
		Workers:             c.Extraction.Workers,
		SyntaxPolicy:        extractor.SyntaxPolicy(strings.ToLower(c.Extraction.SyntaxPolicy)),
		TypeScriptFunctions: extractor.FunctionExportPolicy(strings.ToLower(c.Extraction.TypeScriptFunctions)),
		CacheSize:           c.Extraction.CacheSize,
		IndexPath:           resolvePath(rootDir, c.Index.Path),
		BatchSize:           c.Index.BatchSize,
		StoragePath:         resolvePath(rootDir, c.Storage.Path),
	}
}

func resolvePath(rootDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, filepath.FromSlash(path))
}
