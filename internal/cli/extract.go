package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/sdkref/internal/config"
	"github.com/mvp-joe/sdkref/internal/discovery"
	"github.com/mvp-joe/sdkref/internal/extractor"
	"github.com/mvp-joe/sdkref/internal/symbols"
)

var (
	extractNamespaceFlag string
	extractPrettyFlag    bool
	extractOutputFlag    string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [paths...]",
	Short: "Print the symbols of files or directories as JSON",
	Long: `Extract parses the given files and prints their public symbols as a JSON
array, without touching the index. Directories are walked with the default
include and ignore patterns. Extraction settings come from the project
configuration.

Examples:
  # Extract a single file
  sdkref extract client.go

  # Extract a whole SDK under one namespace
  sdkref extract ./sdk/python --namespace payments --pretty

  # Write the result to a file
  sdkref extract ./sdk -o symbols.json
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractNamespaceFlag, "namespace", "n", "", "Namespace recorded on every symbol")
	extractCmd.Flags().BoolVar(&extractPrettyFlag, "pretty", false, "Indent the JSON output")
	extractCmd.Flags().StringVarP(&extractOutputFlag, "output", "o", "", "Write JSON to a file instead of stdout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	entries, err := extractionEntries(cmd.Context(), args, extractNamespaceFlag)
	if err != nil {
		return err
	}

	syms, err := extractSymbols(cmd.Context(), cfg, entries)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if extractOutputFlag != "" {
		f, err := os.Create(extractOutputFlag)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return writeSymbolsJSON(out, syms, extractPrettyFlag)
}

// extractionEntries expands paths into extraction entries. Files are taken
// as given; directories are walked with the default source patterns.
func extractionEntries(ctx context.Context, paths []string, namespace string) ([]extractor.Entry, error) {
	defaults := config.Default().Sources[0]

	var entries []extractor.Entry
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			if extractor.DetectLanguage(path) == "" {
				return nil, fmt.Errorf("unsupported file type: %s", path)
			}
			entries = append(entries, extractor.Entry{Path: path, Namespace: namespace})
			continue
		}

		disc, err := discovery.New(path, []discovery.Source{{
			Namespace: namespace,
			Root:      ".",
			Include:   defaults.Include,
			Ignore:    defaults.Ignore,
		}})
		if err != nil {
			return nil, err
		}
		files, err := disc.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to discover files in %s: %w", path, err)
		}
		for _, f := range files {
			entry := f.Entry()
			entry.Path = filepath.Join(path, filepath.FromSlash(f.Path))
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func extractSymbols(ctx context.Context, cfg *config.Config, entries []extractor.Entry) ([]symbols.Symbol, error) {
	idxCfg := cfg.ToIndexerConfig(".")
	registry := extractor.NewRegistry(extractor.Options{
		Workers:      idxCfg.Workers,
		SyntaxPolicy: idxCfg.SyntaxPolicy,
	}, idxCfg.TypeScriptFunctions)

	syms, err := registry.Extract(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return syms, nil
}

// writeSymbolsJSON writes symbols as a JSON array; an empty result is "[]".
func writeSymbolsJSON(w io.Writer, syms []symbols.Symbol, pretty bool) error {
	if syms == nil {
		syms = []symbols.Symbol{}
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(syms); err != nil {
		return fmt.Errorf("failed to encode symbols: %w", err)
	}
	return nil
}
