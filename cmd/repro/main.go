// Command repro re-runs an artifact's experiments and checks the results
// against the published numbers.
package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sznuper/repro/internal/config"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:          "repro",
	Short:        "Reproduce artifact figures and check them against published results",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search "+searchPaths()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env REPRO_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file; relative paths are under options.logs_dir (default repro.log while the spinner is shown)")
	registerOptionFlags(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config file, overlays option flags and validates
// the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := applyOptionFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func searchPaths() string {
	return strings.Join(config.DefaultConfigPaths(), ", ")
}
