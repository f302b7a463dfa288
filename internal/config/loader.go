package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mvp-joe/sdkref/internal/discovery"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SDKREF_*)
// 2. Config file (.sdkref/config.yml or .sdkref/config.yaml)
// 3. Default values
//
// Sources are only read from the config file; when it names none, the
// default source covering the whole project is used.
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, discovery.StateDir))

	v.SetEnvPrefix("SDKREF")
	v.AutomaticEnv()
	// SDKREF_EXTRACTION_WORKERS -> extraction.workers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("extraction.workers")
	v.BindEnv("extraction.syntax_policy")
	v.BindEnv("extraction.typescript_functions")
	v.BindEnv("extraction.cache_size")

	v.BindEnv("index.path")
	v.BindEnv("index.batch_size")

	v.BindEnv("storage.path")

	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = Default().Sources
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extraction.workers", defaults.Extraction.Workers)
	v.SetDefault("extraction.syntax_policy", defaults.Extraction.SyntaxPolicy)
	v.SetDefault("extraction.typescript_functions", defaults.Extraction.TypeScriptFunctions)
	v.SetDefault("extraction.cache_size", defaults.Extraction.CacheSize)

	v.SetDefault("index.path", defaults.Index.Path)
	v.SetDefault("index.batch_size", defaults.Index.BatchSize)

	v.SetDefault("storage.path", defaults.Storage.Path)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
