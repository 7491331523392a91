package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
)

var (
	configFiles []string
	serverPort  int
	serverHost  string
)

var rootCmd = &cobra.Command{
	Use:   "capsa",
	Short: "Capsa is a personal knowledge inbox with retrieval-grounded answers",
	Long: `Capsa stores short text documents (typed notes, or readable text extracted
from URLs) and answers natural-language questions about them by retrieving
the most relevant fragments and grounding a generation model on them.

Running capsa with no subcommand starts the HTTP server.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", nil,
		"configuration file path (repeatable, later files override earlier ones)")
	rootCmd.PersistentFlags().IntVarP(&serverPort, "port", "p", 0,
		"server port (overrides config)")
	rootCmd.PersistentFlags().StringVar(&serverHost, "host", "",
		"server host (overrides config)")

	rootCmd.AddCommand(serveCmd, askCmd, importCmd, versionCmd)
}

func main() {
	common.LoadVersionFromFile()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads the merged configuration and initializes the logger.
// Shared by every command that builds the application.
func bootstrap() (*common.Config, arbor.ILogger, error) {
	paths := configFiles
	if len(paths) == 0 {
		paths = discoverConfig()
	}

	config, err := common.LoadFromFiles(paths...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	common.ApplyFlagOverrides(config, serverPort, serverHost)

	logger := common.InitLogger(config)

	if len(paths) > 0 {
		logger.Debug().
			Strs("config_files", paths).
			Str("log_level", config.Logging.Level).
			Msg("Configuration loaded")
	}

	return config, logger, nil
}

// discoverConfig looks for capsa.toml in the working directory, then next
// to the binary. Defaults apply when neither exists.
func discoverConfig() []string {
	if _, err := os.Stat("capsa.toml"); err == nil {
		return []string{"capsa.toml"}
	}

	if exe, err := os.Executable(); err == nil {
		path := filepath.Join(filepath.Dir(exe), "capsa.toml")
		if _, err := os.Stat(path); err == nil {
			return []string{path}
		}
	}

	return nil
}
