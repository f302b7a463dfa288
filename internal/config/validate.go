package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
)

var (
	// ErrNoSources indicates no source trees are configured
	ErrNoSources = errors.New("no sources configured")

	// ErrEmptyRoot indicates a source without a root directory
	ErrEmptyRoot = errors.New("empty source root")

	// ErrEmptyInclude indicates a source without include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidWorkers indicates a negative worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrInvalidSyntaxPolicy indicates an unknown syntax policy
	ErrInvalidSyntaxPolicy = errors.New("invalid syntax policy")

	// ErrInvalidFunctionPolicy indicates an unknown TypeScript function policy
	ErrInvalidFunctionPolicy = errors.New("invalid typescript function policy")

	// ErrInvalidCacheSize indicates a negative extraction cache size
	ErrInvalidCacheSize = errors.New("invalid cache size")

	// ErrEmptyPath indicates a missing index or storage path
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidBatchSize indicates a non-positive index batch size
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateSources(cfg.Sources); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutputs(cfg); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSources(sources []SourceConfig) error {
	if len(sources) == 0 {
		return fmt.Errorf("%w: at least one source required", ErrNoSources)
	}

	var errs []error
	for i, src := range sources {
		label := src.Namespace
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}

		if strings.TrimSpace(src.Root) == "" {
			errs = append(errs, fmt.Errorf("%w: source %s", ErrEmptyRoot, label))
		}
		if len(src.Include) == 0 {
			errs = append(errs, fmt.Errorf("%w: source %s", ErrEmptyInclude, label))
		}

		for _, pattern := range append(append([]string{}, src.Include...), src.Ignore...) {
			if err := discovery.CompilePattern(pattern); err != nil {
				errs = append(errs, fmt.Errorf("%w: source %s: %q", ErrInvalidPattern, label, pattern))
			}
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtraction(cfg *ExtractionConfig) error {
	var errs []error

	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	switch extractor.SyntaxPolicy(strings.ToLower(cfg.SyntaxPolicy)) {
	case extractor.SyntaxPartial, extractor.SyntaxReject:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'partial' or 'reject', got '%s'", ErrInvalidSyntaxPolicy, cfg.SyntaxPolicy))
	}

	switch extractor.FunctionExportPolicy(strings.ToLower(cfg.TypeScriptFunctions)) {
	case extractor.FunctionsExported, extractor.FunctionsAll:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'exported' or 'all', got '%s'", ErrInvalidFunctionPolicy, cfg.TypeScriptFunctions))
	}

	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSize, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutputs(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Index.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: index.path is required", ErrEmptyPath))
	}

	if cfg.Index.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidBatchSize, cfg.Index.BatchSize))
	}

	if strings.TrimSpace(cfg.Storage.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: storage.path is required", ErrEmptyPath))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
