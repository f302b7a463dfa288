package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	rootDirFlag string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sdkref",
	Short: "sdkref - searchable symbol reference for SDK sources",
	Long: `sdkref extracts the public API surface of Go, Python and TypeScript SDKs
(functions, types, classes and their members, with doc comments) and keeps
it in a full-text search index for people and coding assistants.

Configuration is read from .sdkref/config.yml in the project root.
SDKREF_* environment variables override it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&rootDirFlag, "dir", "C", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	viper.BindPFlag("dir", rootCmd.PersistentFlags().Lookup("dir"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig lets SDKREF_DIR and SDKREF_VERBOSE stand in for the global flags.
// Project settings are loaded per command by the config package.
func initConfig() {
	viper.SetEnvPrefix("SDKREF")
	viper.BindEnv("dir")
	viper.BindEnv("verbose")
}

// projectRoot returns the absolute project root.
func projectRoot() (string, error) {
	dir := viper.GetString("dir")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project root: %w", err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project root %s is not a directory", abs)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Project root:", abs)
	}
	return abs, nil
}
