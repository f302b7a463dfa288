package config

import (
	"runtime"
)

// Config represents the complete sdkref configuration.
// It can be loaded from .sdkref/config.yml with environment variable overrides.
type Config struct {
	Sources    []SourceConfig   `yaml:"sources" mapstructure:"sources"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Index      IndexConfig      `yaml:"index" mapstructure:"index"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
}

// SourceConfig names one tree of SDK sources sharing a namespace.
type SourceConfig struct {
	Namespace string   `yaml:"namespace" mapstructure:"namespace"`
	Root      string   `yaml:"root" mapstructure:"root"`       // relative to the project root
	Include   []string `yaml:"include" mapstructure:"include"` // glob patterns relative to root
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns relative to root
}

// ExtractionConfig tunes the symbol extractors.
type ExtractionConfig struct {
	Workers             int    `yaml:"workers" mapstructure:"workers"`                           // files parsed concurrently; <2 is sequential
	SyntaxPolicy        string `yaml:"syntax_policy" mapstructure:"syntax_policy"`               // "partial" or "reject"
	TypeScriptFunctions string `yaml:"typescript_functions" mapstructure:"typescript_functions"` // "exported" or "all"
	CacheSize           int    `yaml:"cache_size" mapstructure:"cache_size"`                     // cached file extractions; 0 disables
}

// IndexConfig configures the bleve search index.
type IndexConfig struct {
	Path      string `yaml:"path" mapstructure:"path"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// StorageConfig configures the SQLite symbol store.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Sources: []SourceConfig{
			{
				Namespace: "default",
				Root:      ".",
				Include: []string{
					"**/*.go",
					"**/*.py",
					"**/*.pyi",
					"**/*.ts",
					"**/*.tsx",
				},
				Ignore: []string{
					"node_modules/**",
					"vendor/**",
					".git/**",
					"dist/**",
					"build/**",
					"__pycache__/**",
					"**/*_test.go",
					"**/testdata/**",
				},
			},
		},
		Extraction: ExtractionConfig{
			Workers:             runtime.NumCPU(),
			SyntaxPolicy:        "partial",
			TypeScriptFunctions: "exported",
			CacheSize:           10000,
		},
		Index: IndexConfig{
			Path:      ".sdkref/index.bleve",
			BatchSize: 500,
		},
		Storage: StorageConfig{
			Path: ".sdkref/symbols.db",
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}
